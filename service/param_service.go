// api/service/param_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/dao"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/util"
)

// IParamService defines the interface for override parameter operations
type IParamService interface {
	SetParameter(ctx context.Context, param model.OverrideParameter, userID string) error
	GetParameter(ctx context.Context, key string) (*model.OverrideParameter, error)
	ListParameters(ctx context.Context) ([]*model.OverrideParameter, error)
}

// ParamService handles business logic for the override parameter store
type ParamService struct {
	paramDAO *dao.ParamDAO
	eventBus *util.EventBus
}

var _ IParamService = &ParamService{}

func NewParamService(paramDAO *dao.ParamDAO, eventBus *util.EventBus) *ParamService {
	return &ParamService{
		paramDAO: paramDAO,
		eventBus: eventBus,
	}
}

// SetParameter writes an override parameter. Policy consumers subscribe to
// the published event and reload their snapshot.
func (s *ParamService) SetParameter(ctx context.Context, param model.OverrideParameter, userID string) error {
	if param.Key == "" {
		return fmt.Errorf("parameter key cannot be empty")
	}

	if err := s.paramDAO.SetParameter(ctx, param); err != nil {
		logger.Error("Error setting parameter", zap.Error(err), zap.String("key", param.Key))
		return err
	}

	s.eventBus.Publish(ctx, util.EventParamChanged, param.Key)

	logger.Info("Parameter set", zap.String("key", param.Key), zap.String("userID", userID))
	return nil
}

// GetParameter retrieves one parameter by key
func (s *ParamService) GetParameter(ctx context.Context, key string) (*model.OverrideParameter, error) {
	param, err := s.paramDAO.GetParameter(ctx, key)
	if err != nil {
		if errors.Is(err, gate_errors.ErrParameterNotFound) {
			return nil, gate_errors.ErrParameterNotFound
		}
		logger.Error("Error retrieving parameter", zap.Error(err), zap.String("key", key))
		return nil, gate_errors.ErrInternalServer
	}

	return param, nil
}

// ListParameters retrieves every stored parameter
func (s *ParamService) ListParameters(ctx context.Context) ([]*model.OverrideParameter, error) {
	params, err := s.paramDAO.ListParameters(ctx)
	if err != nil {
		logger.Error("Error listing parameters", zap.Error(err))
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}

	return params, nil
}
