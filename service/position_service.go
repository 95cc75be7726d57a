// api/service/position_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qc-suite/gatekeeper/dao"
	gate_errors "github.com/qc-suite/gatekeeper/errors"
	logger "github.com/qc-suite/gatekeeper/logging"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/util"
)

// IPositionService defines the interface for position operations
type IPositionService interface {
	CreatePosition(ctx context.Context, position model.Position, userID string) (*model.Position, error)
	UpdatePosition(ctx context.Context, position model.Position, userID string) (*model.Position, error)
	DeletePosition(ctx context.Context, positionID string, userID string) error
	GetPosition(ctx context.Context, positionID string) (*model.Position, error)
	GetPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error)
}

// PositionService handles business logic for position operations
type PositionService struct {
	positionDAO     *dao.PositionDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IPositionService = &PositionService{}

func NewPositionService(positionDAO *dao.PositionDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *PositionService {
	service := &PositionService{
		positionDAO:     positionDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("position.created", service.handlePositionCreated)
	eventBus.Subscribe("position.deleted", service.handlePositionDeleted)

	return service
}

func (s *PositionService) handlePositionCreated(ctx context.Context, event util.Event) error {
	position := event.Payload.(model.Position)
	logger.Info("Position created event received", zap.String("positionID", position.ID))

	if err := s.notificationSvc.NotifyPositionChange(ctx, "created", position); err != nil {
		logger.Warn("Failed to send position creation notification", zap.Error(err), zap.String("positionID", position.ID))
	}

	return nil
}

func (s *PositionService) handlePositionDeleted(ctx context.Context, event util.Event) error {
	positionID := event.Payload.(string)
	logger.Info("Position deleted event received", zap.String("positionID", positionID))

	if err := s.notificationSvc.NotifyPositionChange(ctx, "deleted", model.Position{ID: positionID}); err != nil {
		logger.Warn("Failed to send position deletion notification", zap.Error(err), zap.String("positionID", positionID))
	}

	return nil
}

// CreatePosition handles the creation of a new position
func (s *PositionService) CreatePosition(ctx context.Context, position model.Position, userID string) (*model.Position, error) {
	if err := s.validationUtil.ValidatePosition(position); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}

	position.CreatedAt = time.Now()
	position.UpdatedAt = time.Now()

	positionID, err := s.positionDAO.CreatePosition(ctx, position)
	if err != nil {
		logger.Error("Error creating position", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	position.ID = positionID

	s.eventBus.Publish(ctx, "position.created", position)
	s.eventBus.Publish(ctx, util.EventOrgChanged, positionID)

	logger.Info("Position created successfully", zap.String("positionID", positionID), zap.String("userID", userID))
	return &position, nil
}

// UpdatePosition handles updates to an existing position
func (s *PositionService) UpdatePosition(ctx context.Context, position model.Position, userID string) (*model.Position, error) {
	if err := s.validationUtil.ValidatePosition(position); err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}

	position.UpdatedAt = time.Now()

	updatedPosition, err := s.positionDAO.UpdatePosition(ctx, position)
	if err != nil {
		logger.Error("Error updating position", zap.Error(err), zap.String("positionID", position.ID), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to update position: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventOrgChanged, position.ID)

	logger.Info("Position updated successfully", zap.String("positionID", position.ID), zap.String("userID", userID))
	return updatedPosition, nil
}

// DeletePosition handles the deletion of a position
func (s *PositionService) DeletePosition(ctx context.Context, positionID string, userID string) error {
	err := s.positionDAO.DeletePosition(ctx, positionID)
	if err != nil {
		logger.Error("Error deleting position", zap.Error(err), zap.String("positionID", positionID), zap.String("userID", userID))
		return fmt.Errorf("failed to delete position: %w", err)
	}

	s.eventBus.Publish(ctx, "position.deleted", positionID)
	s.eventBus.Publish(ctx, util.EventOrgChanged, positionID)

	logger.Info("Position deleted successfully", zap.String("positionID", positionID), zap.String("userID", userID))
	return nil
}

// GetPosition retrieves a position by its ID
func (s *PositionService) GetPosition(ctx context.Context, positionID string) (*model.Position, error) {
	position, err := s.positionDAO.GetPosition(ctx, positionID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPositionNotFound) {
			return nil, gate_errors.ErrPositionNotFound
		}
		logger.Error("Error retrieving position", zap.Error(err), zap.String("positionID", positionID))
		return nil, gate_errors.ErrInternalServer
	}

	return position, nil
}

// GetPositionsByDepartment retrieves all positions within a department
func (s *PositionService) GetPositionsByDepartment(ctx context.Context, departmentID string) ([]*model.Position, error) {
	positions, err := s.positionDAO.GetPositionsByDepartment(ctx, departmentID)
	if err != nil {
		logger.Error("Error retrieving positions by department", zap.Error(err), zap.String("departmentID", departmentID))
		return nil, fmt.Errorf("failed to retrieve positions by department: %w", err)
	}

	return positions, nil
}
