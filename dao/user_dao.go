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

type UserDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewUserDAO(driver neo4j.Driver, auditService audit.Service) *UserDAO {
	dao := &UserDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for User", zap.Error(err))
	}
	return dao
}

func (dao *UserDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_user_id IF NOT EXISTS
        FOR (u:` + gate_neo4j.LabelUser + `) REQUIRE u.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on User ID", zap.Error(err))
		return err
	}
	return nil
}

func (dao *UserDAO) CreateUser(ctx context.Context, user model.UserIdentity) (string, error) {
	start := time.Now()
	logger.Info("Creating new user", zap.String("username", user.Username))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        MATCH (u:` + gate_neo4j.LabelUser + ` {username: $username})
        RETURN u.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{"username": user.Username})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrUserConflict
		}

		query := `
        MERGE (u:` + gate_neo4j.LabelUser + ` {id: $id})
        ON CREATE SET u += $props
        RETURN u.id as id
        `
		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id": user.ID,
			"props": map[string]interface{}{
				"username":    user.Username,
				"name":        user.Name,
				"email":       user.Email,
				"isSuperuser": user.IsSuperuser,
				"createdAt":   now,
				"updatedAt":   now,
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
		logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("username", user.Username),
			zap.Duration("duration", duration))
		return "", err
	}

	userID := result.(string)
	logger.Info("User created successfully",
		zap.String("userID", userID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelUser,
		ResourceID:    userID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &user),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return userID, nil
}

func (dao *UserDAO) DeleteUser(ctx context.Context, userID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + gate_neo4j.LabelUser + ` {id: $id})
        DETACH DELETE u
        RETURN count(u) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": userID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrUserNotFound
	})
	if err != nil {
		logger.Error("Failed to delete user", zap.Error(err), zap.String("userID", userID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelUser,
		ResourceID:    userID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *UserDAO) GetUser(ctx context.Context, userID string) (*model.UserIdentity, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $id})
    OPTIONAL MATCH (u)-[:` + gate_neo4j.RelBoundTo + `]->(p:` + gate_neo4j.LabelPosition + `)
    RETURN u, p
    `
	result, err := session.Run(query, map[string]interface{}{"id": userID})
	if err != nil {
		logger.Error("Failed to execute get user query",
			zap.Error(err),
			zap.String("userID", userID))
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		record := result.Record()
		user := mapNodeToUser(record.Values[0].(neo4j.Node))
		if positionNode, ok := record.Values[1].(neo4j.Node); ok {
			position := mapNodeToPosition(positionNode)
			user.Binding = &model.HomeUnit{
				CompanyID:    position.CompanyID,
				DepartmentID: position.DepartmentID,
				PositionID:   position.ID,
			}
		}
		return user, nil
	}

	return nil, gate_errors.ErrUserNotFound
}

func (dao *UserDAO) ListUsers(ctx context.Context, limit int, offset int) ([]*model.UserIdentity, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + `)
    RETURN u
    ORDER BY u.username
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

	var users []*model.UserIdentity
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		users = append(users, mapNodeToUser(node))
	}

	return users, nil
}

// SetBinding replaces the user's active org binding with the given position.
// A user holds at most one binding; transfers overwrite the previous one.
func (dao *UserDAO) SetBinding(ctx context.Context, userID string, positionID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})
        MATCH (p:` + gate_neo4j.LabelPosition + ` {id: $positionID})
        OPTIONAL MATCH (u)-[old:` + gate_neo4j.RelBoundTo + `]->(:` + gate_neo4j.LabelPosition + `)
        DELETE old
        MERGE (u)-[:` + gate_neo4j.RelBoundTo + `]->(p)
        RETURN p.id
        `
		result, err := transaction.Run(query, map[string]interface{}{
			"userID":     userID,
			"positionID": positionID,
		})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrPositionNotFound
	})
	if err != nil {
		logger.Error("Failed to set user binding",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("positionID", positionID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "SET_BINDING",
		ResourceID:    userID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, map[string]string{"userID": userID, "positionID": positionID}),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

// ClearBinding removes the user's org binding; the user falls back to
// role-only resolution.
func (dao *UserDAO) ClearBinding(ctx context.Context, userID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})-[b:` + gate_neo4j.RelBoundTo + `]->(:` + gate_neo4j.LabelPosition + `)
        DELETE b
        `
		result, err := tx.Run(query, map[string]interface{}{"userID": userID})
		if err != nil {
			return nil, err
		}
		return result.Consume()
	})

	return err
}

// GetHomeUnit resolves the user's binding triple. A user without a binding
// returns (nil, nil); that is a valid state, not an error.
func (dao *UserDAO) GetHomeUnit(ctx context.Context, userID string) (*model.HomeUnit, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (u:` + gate_neo4j.LabelUser + ` {id: $userID})
    OPTIONAL MATCH (u)-[:` + gate_neo4j.RelBoundTo + `]->(p:` + gate_neo4j.LabelPosition + `)
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"userID": userID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if !result.Next() {
		return nil, gate_errors.ErrUserNotFound
	}

	positionNode, ok := result.Record().Values[0].(neo4j.Node)
	if !ok {
		return nil, nil
	}

	position := mapNodeToPosition(positionNode)
	return &model.HomeUnit{
		CompanyID:    position.CompanyID,
		DepartmentID: position.DepartmentID,
		PositionID:   position.ID,
	}, nil
}

func mapNodeToUser(node neo4j.Node) *model.UserIdentity {
	props := node.Props
	user := &model.UserIdentity{}

	user.ID = props["id"].(string)
	user.Username = props["username"].(string)
	if name, ok := props["name"].(string); ok {
		user.Name = name
	}
	if email, ok := props["email"].(string); ok {
		user.Email = email
	}
	if isSuperuser, ok := props["isSuperuser"].(bool); ok {
		user.IsSuperuser = isSuperuser
	}
	user.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	user.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return user
}
