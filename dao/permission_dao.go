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

type PermissionDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewPermissionDAO(driver neo4j.Driver, auditService audit.Service) *PermissionDAO {
	dao := &PermissionDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Permission", zap.Error(err))
	}
	return dao
}

func (dao *PermissionDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_permission_code IF NOT EXISTS
        FOR (p:` + gate_neo4j.LabelPermission + `) REQUIRE p.code IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Permission code", zap.Error(err))
		return err
	}
	return nil
}

// CreatePermission registers a capability code. Codes are globally unique; a
// second registration fails with ErrDuplicateCapability.
func (dao *PermissionDAO) CreatePermission(ctx context.Context, permission model.Permission) (string, error) {
	start := time.Now()
	logger.Info("Creating new permission", zap.String("code", permission.Code))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if permission.ID == "" {
		permission.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        MATCH (p:` + gate_neo4j.LabelPermission + ` {code: $code})
        RETURN p.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{"code": permission.Code})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrDuplicateCapability
		}

		query := `
        MERGE (p:` + gate_neo4j.LabelPermission + ` {id: $id})
        ON CREATE SET p += $props
        RETURN p.id as id
        `
		params := map[string]interface{}{
			"id": permission.ID,
			"props": map[string]interface{}{
				"code":        permission.Code,
				"name":        permission.Name,
				"kind":        string(permission.Kind),
				"module":      permission.Module,
				"description": permission.Description,
				"createdAt":   time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to create permission",
			zap.Error(err),
			zap.String("code", permission.Code),
			zap.Duration("duration", duration))
		return "", err
	}

	permissionID := result.(string)
	logger.Info("Permission created successfully",
		zap.String("permissionID", permissionID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelPermission,
		ResourceID:    permissionID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &permission),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return permissionID, nil
}

// DeletePermission removes a permission and every grant that references it.
// DETACH DELETE ensures grants never outlive their permission.
func (dao *PermissionDAO) DeletePermission(ctx context.Context, permissionID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (p:` + gate_neo4j.LabelPermission + ` {id: $id})
        DETACH DELETE p
        RETURN count(p) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": permissionID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrPermissionNotFound
	})
	if err != nil {
		logger.Error("Failed to delete permission", zap.Error(err), zap.String("permissionID", permissionID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelPermission,
		ResourceID:    permissionID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *PermissionDAO) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelPermission + ` {id: $id})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"id": permissionID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToPermission(node), nil
	}

	return nil, gate_errors.ErrPermissionNotFound
}

func (dao *PermissionDAO) GetPermissionByCode(ctx context.Context, code string) (*model.Permission, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelPermission + ` {code: $code})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"code": code})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToPermission(node), nil
	}

	return nil, gate_errors.ErrPermissionNotFound
}

func (dao *PermissionDAO) ListPermissions(ctx context.Context, limit int, offset int) ([]*model.Permission, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelPermission + `)
    RETURN p
    ORDER BY p.code
    SKIP $offset
    LIMIT $limit
    `
	result, err := session.Run(query, map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var permissions []*model.Permission
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		permissions = append(permissions, mapNodeToPermission(node))
	}

	return permissions, nil
}

func mapNodeToPermission(node neo4j.Node) *model.Permission {
	props := node.Props
	permission := &model.Permission{}

	permission.ID = props["id"].(string)
	permission.Code = props["code"].(string)
	permission.Name = props["name"].(string)
	if kind, ok := props["kind"].(string); ok {
		permission.Kind = model.PermissionKind(kind)
	}
	if module, ok := props["module"].(string); ok {
		permission.Module = module
	}
	if description, ok := props["description"].(string); ok {
		permission.Description = description
	}
	permission.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])

	return permission
}
