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

type MenuDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewMenuDAO(driver neo4j.Driver, auditService audit.Service) *MenuDAO {
	return &MenuDAO{Driver: driver, AuditService: auditService}
}

func (dao *MenuDAO) UpsertMenuList(ctx context.Context, menu model.MenuAccessList) (string, error) {
	logger.Info("Upserting menu access list", zap.String("menu", menu.MenuName))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if menu.ID == "" {
		menu.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (m:` + gate_neo4j.LabelMenu + ` {menuName: $menuName})
        ON CREATE SET m.id = $id, m.createdAt = $now
        SET m.userIDs = $userIDs, m.active = $active, m.updatedAt = $now
        RETURN m.id as id
        `
		params := map[string]interface{}{
			"id":       menu.ID,
			"menuName": menu.MenuName,
			"userIDs":  menu.UserIDs,
			"active":   menu.Active,
			"now":      time.Now().Format(time.RFC3339),
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
	if err != nil {
		logger.Error("Failed to upsert menu access list", zap.Error(err), zap.String("menu", menu.MenuName))
		return "", err
	}

	menuID := result.(string)

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "UPSERT_" + gate_neo4j.LabelMenu,
		ResourceID:    menuID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &menu),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return menuID, nil
}

func (dao *MenuDAO) GetMenuList(ctx context.Context, menuName string) (*model.MenuAccessList, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (m:` + gate_neo4j.LabelMenu + ` {menuName: $menuName})
    RETURN m
    `
	result, err := session.Run(query, map[string]interface{}{"menuName": menuName})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToMenuList(node), nil
	}

	return nil, gate_errors.ErrMenuNotFound
}

func (dao *MenuDAO) DeleteMenuList(ctx context.Context, menuName string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (m:` + gate_neo4j.LabelMenu + ` {menuName: $menuName})
        DETACH DELETE m
        RETURN count(m) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"menuName": menuName})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrMenuNotFound
	})

	return err
}

func mapNodeToMenuList(node neo4j.Node) *model.MenuAccessList {
	props := node.Props
	menu := &model.MenuAccessList{}

	menu.ID = props["id"].(string)
	menu.MenuName = props["menuName"].(string)
	if userIDs, ok := props["userIDs"].(string); ok {
		menu.UserIDs = userIDs
	}
	if active, ok := props["active"].(bool); ok {
		menu.Active = active
	}
	menu.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	menu.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return menu
}
