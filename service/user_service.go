// api/service/user_service.go
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

// IUserService defines the interface for user identity operations
type IUserService interface {
	CreateUser(ctx context.Context, user model.UserIdentity, requestorID string) (*model.UserIdentity, error)
	DeleteUser(ctx context.Context, userID string, requestorID string) error
	GetUser(ctx context.Context, userID string) (*model.UserIdentity, error)
	ListUsers(ctx context.Context, limit int, offset int) ([]*model.UserIdentity, error)
	SetBinding(ctx context.Context, userID string, positionID string, requestorID string) error
	ClearBinding(ctx context.Context, userID string, requestorID string) error
	GetHomeUnit(ctx context.Context, userID string) (*model.HomeUnit, error)
}

// UserService handles business logic for user identity operations
type UserService struct {
	userDAO         *dao.UserDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IUserService = &UserService{}

func NewUserService(userDAO *dao.UserDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *UserService {
	service := &UserService{
		userDAO:         userDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("user.created", service.handleUserCreated)
	eventBus.Subscribe("user.deleted", service.handleUserDeleted)

	return service
}

func (s *UserService) handleUserCreated(ctx context.Context, event util.Event) error {
	user := event.Payload.(model.UserIdentity)
	logger.Info("User created event received", zap.String("userID", user.ID))

	if err := s.notificationSvc.NotifyUserChange(ctx, "created", user); err != nil {
		logger.Warn("Failed to send user creation notification", zap.Error(err), zap.String("userID", user.ID))
	}

	return nil
}

func (s *UserService) handleUserDeleted(ctx context.Context, event util.Event) error {
	userID := event.Payload.(string)
	logger.Info("User deleted event received", zap.String("userID", userID))

	if err := s.notificationSvc.NotifyUserChange(ctx, "deleted", model.UserIdentity{ID: userID}); err != nil {
		logger.Warn("Failed to send user deletion notification", zap.Error(err), zap.String("userID", userID))
	}

	return nil
}

// CreateUser handles the creation of a new user identity
func (s *UserService) CreateUser(ctx context.Context, user model.UserIdentity, requestorID string) (*model.UserIdentity, error) {
	if err := s.validationUtil.ValidateUser(user); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	userID, err := s.userDAO.CreateUser(ctx, user)
	if err != nil {
		logger.Error("Error creating user", zap.Error(err), zap.String("requestorID", requestorID))
		return nil, err
	}

	user.ID = userID

	if err := s.cacheService.SetUser(ctx, user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, "user.created", user)

	logger.Info("User created successfully", zap.String("userID", userID), zap.String("requestorID", requestorID))
	return &user, nil
}

// DeleteUser handles the deletion of a user identity
func (s *UserService) DeleteUser(ctx context.Context, userID string, requestorID string) error {
	err := s.userDAO.DeleteUser(ctx, userID)
	if err != nil {
		logger.Error("Error deleting user", zap.Error(err), zap.String("userID", userID), zap.String("requestorID", requestorID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := s.cacheService.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to delete user from cache", zap.Error(err), zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, "user.deleted", userID)

	logger.Info("User deleted successfully", zap.String("userID", userID), zap.String("requestorID", requestorID))
	return nil
}

// GetUser retrieves a user identity by its ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.UserIdentity, error) {
	cachedUser, err := s.cacheService.GetUser(ctx, userID)
	if err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	user, err := s.userDAO.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			return nil, gate_errors.ErrUserNotFound
		}
		logger.Error("Error retrieving user", zap.Error(err), zap.String("userID", userID))
		return nil, gate_errors.ErrInternalServer
	}

	if err := s.cacheService.SetUser(ctx, *user); err != nil {
		logger.Warn("Failed to cache user", zap.Error(err), zap.String("userID", userID))
	}

	return user, nil
}

// ListUsers retrieves all users, possibly with pagination
func (s *UserService) ListUsers(ctx context.Context, limit int, offset int) ([]*model.UserIdentity, error) {
	users, err := s.userDAO.ListUsers(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing users", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// SetBinding attaches a user to their home position. The company and
// department follow from the position, so a binding can never disagree with
// the directory at write time.
func (s *UserService) SetBinding(ctx context.Context, userID string, positionID string, requestorID string) error {
	err := s.userDAO.SetBinding(ctx, userID, positionID)
	if err != nil {
		logger.Error("Error setting user binding", zap.Error(err), zap.String("userID", userID), zap.String("positionID", positionID))
		return fmt.Errorf("failed to set user binding: %w", err)
	}

	if err := s.cacheService.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to delete user from cache", zap.Error(err), zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, util.EventBindingUpdated, userID)

	logger.Info("User binding updated", zap.String("userID", userID), zap.String("positionID", positionID), zap.String("requestorID", requestorID))
	return nil
}

// ClearBinding detaches a user from their home position
func (s *UserService) ClearBinding(ctx context.Context, userID string, requestorID string) error {
	err := s.userDAO.ClearBinding(ctx, userID)
	if err != nil {
		logger.Error("Error clearing user binding", zap.Error(err), zap.String("userID", userID))
		return fmt.Errorf("failed to clear user binding: %w", err)
	}

	if err := s.cacheService.DeleteUser(ctx, userID); err != nil {
		logger.Warn("Failed to delete user from cache", zap.Error(err), zap.String("userID", userID))
	}

	s.eventBus.Publish(ctx, util.EventBindingUpdated, userID)

	logger.Info("User binding cleared", zap.String("userID", userID), zap.String("requestorID", requestorID))
	return nil
}

// GetHomeUnit retrieves a user's organizational binding. A nil unit with a
// nil error means the user is valid but unbound.
func (s *UserService) GetHomeUnit(ctx context.Context, userID string) (*model.HomeUnit, error) {
	unit, err := s.userDAO.GetHomeUnit(ctx, userID)
	if err != nil {
		logger.Error("Error retrieving user home unit", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}
	return unit, nil
}
