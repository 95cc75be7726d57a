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

type PositionDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewPositionDAO(driver neo4j.Driver, auditService audit.Service) *PositionDAO {
	dao := &PositionDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Position", zap.Error(err))
	}
	return dao
}

func (dao *PositionDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_position_id IF NOT EXISTS
        FOR (p:` + gate_neo4j.LabelPosition + `) REQUIRE p.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Position ID", zap.Error(err))
		return err
	}
	return nil
}

// CreatePosition refuses a position whose department belongs to a different
// company; the org tree never holds a cross-company binding.
func (dao *PositionDAO) CreatePosition(ctx context.Context, position model.Position) (string, error) {
	start := time.Now()
	logger.Info("Creating new position", zap.String("positionCode", position.Code))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if position.ID == "" {
		position.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		deptQuery := `
        MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $departmentID})
        RETURN d.companyID
        `
		deptResult, err := transaction.Run(deptQuery, map[string]interface{}{"departmentID": position.DepartmentID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if !deptResult.Next() {
			return nil, gate_errors.ErrDepartmentNotFound
		}
		if deptResult.Record().Values[0].(string) != position.CompanyID {
			return nil, gate_errors.ErrCompanyMismatch
		}

		checkQuery := `
        MATCH (p:` + gate_neo4j.LabelPosition + ` {code: $code, companyID: $companyID})
        RETURN p.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{
			"code":      position.Code,
			"companyID": position.CompanyID,
		})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrPositionConflict
		}

		query := `
        MERGE (p:` + gate_neo4j.LabelPosition + ` {id: $id})
        ON CREATE SET p += $props
        WITH p
        MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $departmentID})
        MERGE (p)-[:` + gate_neo4j.RelPartOf + `]->(d)
        RETURN p.id as id
        `
		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":           position.ID,
			"departmentID": position.DepartmentID,
			"props": map[string]interface{}{
				"code":         position.Code,
				"name":         position.Name,
				"companyID":    position.CompanyID,
				"departmentID": position.DepartmentID,
				"level":        position.Level,
				"createdAt":    now,
				"updatedAt":    now,
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create position",
			zap.Error(err),
			zap.String("positionCode", position.Code),
			zap.Duration("duration", duration))
		return "", err
	}

	positionID := result.(string)
	logger.Info("Position created successfully",
		zap.String("positionID", positionID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelPosition,
		ResourceID:    positionID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &position),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return positionID, nil
}

func (dao *PositionDAO) UpdatePosition(ctx context.Context, position model.Position) (*model.Position, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldPosition, err := dao.GetPosition(ctx, position.ID)
	if err != nil {
		return nil, err
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + gate_neo4j.LabelPosition + ` {id: $id})
        SET p.name = $name, p.level = $level, p.updatedAt = $updatedAt
        RETURN p.id as id
        `
		params := map[string]interface{}{
			"id":        position.ID,
			"name":      position.Name,
			"level":     position.Level,
			"updatedAt": time.Now().Format(time.RFC3339),
		}
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrPositionNotFound
	})
	if err != nil {
		logger.Error("Failed to update position", zap.Error(err), zap.String("positionID", position.ID))
		return nil, err
	}

	updated, err := dao.GetPosition(ctx, position.ID)
	if err != nil {
		return nil, err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "UPDATE_" + gate_neo4j.LabelPosition,
		ResourceID:    position.ID,
		AccessGranted: true,
		ChangeDetails: changeDetails(oldPosition, updated),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updated, nil
}

func (dao *PositionDAO) DeletePosition(ctx context.Context, positionID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + gate_neo4j.LabelPosition + ` {id: $id})
        DETACH DELETE p
        RETURN count(p) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": positionID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrPositionNotFound
	})
	if err != nil {
		logger.Error("Failed to delete position", zap.Error(err), zap.String("positionID", positionID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelPosition,
		ResourceID:    positionID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *PositionDAO) GetPosition(ctx context.Context, positionID string) (*model.Position, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelPosition + ` {id: $id})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"id": positionID})
	if err != nil {
		logger.Error("Failed to execute get position query",
			zap.Error(err),
			zap.String("positionID", positionID))
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToPosition(node), nil
	}

	return nil, gate_errors.ErrPositionNotFound
}

func (dao *PositionDAO) GetPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelPosition + `)-[:` + gate_neo4j.RelPartOf + `]->(d:` + gate_neo4j.LabelDepartment + ` {id: $departmentID})
    RETURN p
    ORDER BY p.level, p.code
    `
	result, err := session.Run(query, map[string]interface{}{"departmentID": departmentID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var positions []*model.Position
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		positions = append(positions, mapNodeToPosition(node))
	}

	return positions, nil
}

func mapNodeToPosition(node neo4j.Node) *model.Position {
	props := node.Props
	position := &model.Position{}

	position.ID = props["id"].(string)
	position.Code = props["code"].(string)
	position.Name = props["name"].(string)
	position.CompanyID = props["companyID"].(string)
	position.DepartmentID = props["departmentID"].(string)
	if level, ok := props["level"].(int64); ok {
		position.Level = int(level)
	}
	position.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	position.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return position
}
