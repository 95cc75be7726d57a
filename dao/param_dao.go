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

// ParamDAO stores the generic key/value override parameters the edit-window
// policy reads at its reload boundary.
type ParamDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewParamDAO(driver neo4j.Driver, auditService audit.Service) *ParamDAO {
	return &ParamDAO{Driver: driver, AuditService: auditService}
}

func (dao *ParamDAO) SetParameter(ctx context.Context, param model.OverrideParameter) error {
	logger.Info("Setting override parameter", zap.String("key", param.Key))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if param.ID == "" {
		param.ID = uuid.New().String()
	}

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (p:` + gate_neo4j.LabelParameter + ` {key: $key})
        ON CREATE SET p.id = $id
        SET p.value = $value, p.updatedAt = $updatedAt
        RETURN p.id
        `
		params := map[string]interface{}{
			"id":        param.ID,
			"key":       param.Key,
			"value":     param.Value,
			"updatedAt": time.Now().Format(time.RFC3339),
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
		logger.Error("Failed to set override parameter", zap.Error(err), zap.String("key", param.Key))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "SET_PARAMETER",
		ResourceID:    param.Key,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &param),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *ParamDAO) GetParameter(ctx context.Context, key string) (*model.OverrideParameter, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelParameter + ` {key: $key})
    RETURN p
    `
	result, err := session.Run(query, map[string]interface{}{"key": key})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToParameter(node), nil
	}

	return nil, gate_errors.ErrParameterNotFound
}

func (dao *ParamDAO) ListParameters(ctx context.Context) ([]*model.OverrideParameter, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (p:` + gate_neo4j.LabelParameter + `)
    RETURN p
    ORDER BY p.key
    `
	result, err := session.Run(query, nil)
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var params []*model.OverrideParameter
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		params = append(params, mapNodeToParameter(node))
	}

	return params, nil
}

func mapNodeToParameter(node neo4j.Node) *model.OverrideParameter {
	props := node.Props
	param := &model.OverrideParameter{}

	param.ID = props["id"].(string)
	param.Key = props["key"].(string)
	if value, ok := props["value"].(string); ok {
		param.Value = value
	}
	param.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return param
}
