package dao

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/audit"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	gate_neo4j "github.com/qc-suite/gatekeeper/model/neo4j"
	helper_util "github.com/qc-suite/gatekeeper/util/helper"
)

// GrantDAO manages direct org-unit permission grants. A grant is a GRANTED
// relationship from a company/department/position node to a permission node,
// carrying the grant id and the inherited flag.
type GrantDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewGrantDAO(driver neo4j.Driver, auditService audit.Service) *GrantDAO {
	return &GrantDAO{Driver: driver, AuditService: auditService}
}

func unitLabel(kind model.OrgUnitKind) (string, error) {
	switch kind {
	case model.UnitCompany:
		return gate_neo4j.LabelCompany, nil
	case model.UnitDepartment:
		return gate_neo4j.LabelDepartment, nil
	case model.UnitPosition:
		return gate_neo4j.LabelPosition, nil
	default:
		return "", gate_errors.ErrInvalidGrantData
	}
}

func (dao *GrantDAO) CreateUnitGrant(ctx context.Context, grant model.OrgUnitGrant) (string, error) {
	start := time.Now()
	label, err := unitLabel(grant.UnitKind)
	if err != nil {
		return "", err
	}
	logger.Info("Creating org-unit grant",
		zap.String("unitKind", string(grant.UnitKind)),
		zap.String("unitID", grant.UnitID),
		zap.String("permissionID", grant.PermissionID))

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if grant.ID == "" {
		grant.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + label + ` {id: $unitID})
        MATCH (p:` + gate_neo4j.LabelPermission + ` {id: $permissionID})
        MERGE (u)-[g:` + gate_neo4j.RelGranted + `]->(p)
        ON CREATE SET g.id = $id, g.inherited = $inherited, g.createdAt = $createdAt
        SET g.inherited = $inherited
        RETURN g.id as id
        `
		params := map[string]interface{}{
			"id":           grant.ID,
			"unitID":       grant.UnitID,
			"permissionID": grant.PermissionID,
			"inherited":    grant.Inherited,
			"createdAt":    time.Now().Format(time.RFC3339),
		}
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrGrantNotFound
	})
	if err != nil {
		logger.Error("Failed to create org-unit grant",
			zap.Error(err),
			zap.String("unitID", grant.UnitID),
			zap.Duration("duration", time.Since(start)))
		return "", err
	}

	grantID := result.(string)

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_GRANT",
		ResourceID:    grantID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &grant),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return grantID, nil
}

func (dao *GrantDAO) DeleteUnitGrant(ctx context.Context, kind model.OrgUnitKind, unitID string, permissionID string) error {
	label, err := unitLabel(kind)
	if err != nil {
		return err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + label + ` {id: $unitID})-[g:` + gate_neo4j.RelGranted + `]->(p:` + gate_neo4j.LabelPermission + ` {id: $permissionID})
        DELETE g
        RETURN count(g) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"unitID":       unitID,
			"permissionID": permissionID,
		})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrGrantNotFound
	})
	if err != nil {
		logger.Error("Failed to delete org-unit grant",
			zap.Error(err),
			zap.String("unitID", unitID),
			zap.String("permissionID", permissionID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_GRANT",
		ResourceID:    permissionID,
		AccessGranted: true,
		ChangeDetails: changeDetails(map[string]string{"unitID": unitID, "permissionID": permissionID}, nil),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// UnitGrants lists the direct grants of one org unit.
func (dao *GrantDAO) UnitGrants(ctx context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error) {
	label, err := unitLabel(kind)
	if err != nil {
		return nil, err
	}

	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + label + ` {id: $unitID})-[g:` + gate_neo4j.RelGranted + `]->(p:` + gate_neo4j.LabelPermission + `)
    RETURN g, p.id, p.code
    `
	result, err := session.Run(query, map[string]interface{}{"unitID": unitID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var grants []*model.OrgUnitGrant
	for result.Next() {
		record := result.Record()
		rel := record.Values[0].(neo4j.Relationship)
		grant := &model.OrgUnitGrant{
			UnitKind:     kind,
			UnitID:       unitID,
			PermissionID: record.Values[1].(string),
			Code:         record.Values[2].(string),
		}
		if id, ok := rel.Props["id"].(string); ok {
			grant.ID = id
		}
		if inherited, ok := rel.Props["inherited"].(bool); ok {
			grant.Inherited = inherited
		}
		grant.CreatedAt = helper_util.ParseOptionalTime(rel.Props["createdAt"])
		grants = append(grants, grant)
	}

	return grants, nil
}
