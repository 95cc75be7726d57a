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

type RoleDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewRoleDAO(driver neo4j.Driver, auditService audit.Service) *RoleDAO {
	dao := &RoleDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Role", zap.Error(err))
	}
	return dao
}

func (dao *RoleDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_role_name IF NOT EXISTS
        FOR (r:` + gate_neo4j.LabelRole + `) REQUIRE r.name IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Role name", zap.Error(err))
		return err
	}
	return nil
}

func (dao *RoleDAO) CreateRole(ctx context.Context, role model.Role) (string, error) {
	start := time.Now()
	logger.Info("Creating new role", zap.String("roleName", role.Name))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if role.ID == "" {
		role.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        MATCH (r:` + gate_neo4j.LabelRole + ` {name: $name})
        RETURN r.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{"name": role.Name})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrRoleConflict
		}

		query := `
        MERGE (r:` + gate_neo4j.LabelRole + ` {id: $id})
        ON CREATE SET
            r.name = $name,
            r.description = $description,
            r.createdAt = $createdAt,
            r.updatedAt = $updatedAt
        RETURN r.id as id
        `
		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":          role.ID,
			"name":        role.Name,
			"description": role.Description,
			"createdAt":   now,
			"updatedAt":   now,
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
		logger.Error("Failed to create role",
			zap.Error(err),
			zap.String("roleName", role.Name),
			zap.Duration("duration", duration))
		return "", err
	}

	roleID := result.(string)
	logger.Info("Role created successfully",
		zap.String("roleID", roleID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelRole,
		ResourceID:    roleID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &role),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return roleID, nil
}

func (dao *RoleDAO) DeleteRole(ctx context.Context, roleID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (r:` + gate_neo4j.LabelRole + ` {id: $id})
        DETACH DELETE r
        RETURN count(r) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": roleID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrRoleNotFound
	})
	if err != nil {
		logger.Error("Failed to delete role", zap.Error(err), zap.String("roleID", roleID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelRole,
		ResourceID:    roleID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *RoleDAO) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + gate_neo4j.LabelRole + ` {id: $id})
    RETURN r
    `
	result, err := session.Run(query, map[string]interface{}{"id": roleID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToRole(node), nil
	}

	return nil, gate_errors.ErrRoleNotFound
}

func (dao *RoleDAO) ListRoles(ctx context.Context, limit int, offset int) ([]*model.Role, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + gate_neo4j.LabelRole + `)
    RETURN r
    ORDER BY r.name
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

	var roles []*model.Role
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		roles = append(roles, mapNodeToRole(node))
	}

	return roles, nil
}

func (dao *RoleDAO) AssignPermissionToRole(ctx context.Context, roleID string, permissionID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	query := `
    MATCH (r:` + gate_neo4j.LabelRole + ` {id: $roleID})
    MATCH (p:` + gate_neo4j.LabelPermission + ` {id: $permissionID})
    MERGE (r)-[:` + gate_neo4j.RelHasPermission + `]->(p)
    `
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, map[string]interface{}{
			"roleID":       roleID,
			"permissionID": permissionID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})

	return err
}

func (dao *RoleDAO) RemovePermissionFromRole(ctx context.Context, roleID string, permissionID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	query := `
    MATCH (r:` + gate_neo4j.LabelRole + ` {id: $roleID})-[g:` + gate_neo4j.RelHasPermission + `]->(p:` + gate_neo4j.LabelPermission + ` {id: $permissionID})
    DELETE g
    `
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, map[string]interface{}{
			"roleID":       roleID,
			"permissionID": permissionID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})

	return err
}

// GetRoleCodes lists the capability codes a role grants.
func (dao *RoleDAO) GetRoleCodes(ctx context.Context, roleID string) ([]string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (r:` + gate_neo4j.LabelRole + ` {id: $roleID})-[:` + gate_neo4j.RelHasPermission + `]->(p:` + gate_neo4j.LabelPermission + `)
    RETURN p.code
    `
	result, err := session.Run(query, map[string]interface{}{"roleID": roleID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var codes []string
	for result.Next() {
		codes = append(codes, result.Record().Values[0].(string))
	}

	return codes, nil
}

func (dao *RoleDAO) AssignRoleToUser(ctx context.Context, userID string, roleID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})
    MATCH (r:` + gate_neo4j.LabelRole + ` {id: $roleID})
    MERGE (u)-[:` + gate_neo4j.RelHasRole + `]->(r)
    `
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, map[string]interface{}{
			"userID": userID,
			"roleID": roleID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})
	if err != nil {
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "ASSIGN_ROLE",
		ResourceID:    roleID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, map[string]string{"userID": userID, "roleID": roleID}),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *RoleDAO) RemoveRoleFromUser(ctx context.Context, userID string, roleID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})-[a:` + gate_neo4j.RelHasRole + `]->(r:` + gate_neo4j.LabelRole + ` {id: $roleID})
    DELETE a
    `
	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(query, map[string]interface{}{
			"userID": userID,
			"roleID": roleID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})

	return err
}

// GetRoleCodesForUser unions the capability codes of every role the user
// holds. This is the role-derived grant source for resolution.
func (dao *RoleDAO) GetRoleCodesForUser(ctx context.Context, userID string) ([]string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})-[:` + gate_neo4j.RelHasRole + `]->(:` + gate_neo4j.LabelRole + `)-[:` + gate_neo4j.RelHasPermission + `]->(p:` + gate_neo4j.LabelPermission + `)
    RETURN DISTINCT p.code
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var codes []string
	for result.Next() {
		codes = append(codes, result.Record().Values[0].(string))
	}

	return codes, nil
}

// GetRolesForUser lists the roles assigned to a user.
func (dao *RoleDAO) GetRolesForUser(ctx context.Context, userID string) ([]*model.Role, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})-[:` + gate_neo4j.RelHasRole + `]->(r:` + gate_neo4j.LabelRole + `)
    RETURN r
    ORDER BY r.name
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var roles []*model.Role
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		roles = append(roles, mapNodeToRole(node))
	}

	return roles, nil
}

func mapNodeToRole(node neo4j.Node) *model.Role {
	props := node.Props
	role := &model.Role{}

	role.ID = props["id"].(string)
	role.Name = props["name"].(string)
	if description, ok := props["description"].(string); ok {
		role.Description = description
	}
	role.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	role.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return role
}
