// api/service/role_service.go
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

// IRoleService defines the interface for role operations
type IRoleService interface {
	CreateRole(ctx context.Context, role model.Role, userID string) (*model.Role, error)
	DeleteRole(ctx context.Context, roleID string, userID string) error
	GetRole(ctx context.Context, roleID string) (*model.Role, error)
	ListRoles(ctx context.Context, limit int, offset int) ([]*model.Role, error)
	AssignPermissionToRole(ctx context.Context, roleID string, permissionID string, userID string) error
	RemovePermissionFromRole(ctx context.Context, roleID string, permissionID string, userID string) error
	GetRoleCodes(ctx context.Context, roleID string) ([]string, error)
	AssignRoleToUser(ctx context.Context, userID string, roleID string, requestorID string) error
	RemoveRoleFromUser(ctx context.Context, userID string, roleID string, requestorID string) error
	GetRolesForUser(ctx context.Context, userID string) ([]*model.Role, error)
}

// RoleService handles business logic for role operations
type RoleService struct {
	roleDAO         *dao.RoleDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IRoleService = &RoleService{}

func NewRoleService(roleDAO *dao.RoleDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *RoleService {
	service := &RoleService{
		roleDAO:         roleDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("role.created", service.handleRoleCreated)
	eventBus.Subscribe("role.deleted", service.handleRoleDeleted)

	return service
}

func (s *RoleService) handleRoleCreated(ctx context.Context, event util.Event) error {
	role := event.Payload.(model.Role)
	logger.Info("Role created event received", zap.String("roleID", role.ID))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "created", role); err != nil {
		logger.Warn("Failed to send role creation notification", zap.Error(err), zap.String("roleID", role.ID))
	}

	return nil
}

func (s *RoleService) handleRoleDeleted(ctx context.Context, event util.Event) error {
	roleID := event.Payload.(string)
	logger.Info("Role deleted event received", zap.String("roleID", roleID))

	if err := s.notificationSvc.NotifyRoleChange(ctx, "deleted", model.Role{ID: roleID}); err != nil {
		logger.Warn("Failed to send role deletion notification", zap.Error(err), zap.String("roleID", roleID))
	}

	return nil
}

// CreateRole handles the creation of a new role
func (s *RoleService) CreateRole(ctx context.Context, role model.Role, userID string) (*model.Role, error) {
	if err := s.validationUtil.ValidateRole(role); err != nil {
		return nil, fmt.Errorf("invalid role: %w", err)
	}

	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	roleID, err := s.roleDAO.CreateRole(ctx, role)
	if err != nil {
		logger.Error("Error creating role", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	role.ID = roleID

	s.eventBus.Publish(ctx, "role.created", role)

	logger.Info("Role created successfully", zap.String("roleID", roleID), zap.String("userID", userID))
	return &role, nil
}

// DeleteRole handles the deletion of a role
func (s *RoleService) DeleteRole(ctx context.Context, roleID string, userID string) error {
	err := s.roleDAO.DeleteRole(ctx, roleID)
	if err != nil {
		logger.Error("Error deleting role", zap.Error(err), zap.String("roleID", roleID), zap.String("userID", userID))
		return fmt.Errorf("failed to delete role: %w", err)
	}

	s.eventBus.Publish(ctx, "role.deleted", roleID)
	s.eventBus.Publish(ctx, util.EventGrantChanged, roleID)

	logger.Info("Role deleted successfully", zap.String("roleID", roleID), zap.String("userID", userID))
	return nil
}

// GetRole retrieves a role by its ID
func (s *RoleService) GetRole(ctx context.Context, roleID string) (*model.Role, error) {
	role, err := s.roleDAO.GetRole(ctx, roleID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrRoleNotFound) {
			return nil, gate_errors.ErrRoleNotFound
		}
		logger.Error("Error retrieving role", zap.Error(err), zap.String("roleID", roleID))
		return nil, gate_errors.ErrInternalServer
	}

	return role, nil
}

// ListRoles retrieves all roles, possibly with pagination
func (s *RoleService) ListRoles(ctx context.Context, limit int, offset int) ([]*model.Role, error) {
	roles, err := s.roleDAO.ListRoles(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing roles", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// AssignPermissionToRole attaches a catalog permission to a role
func (s *RoleService) AssignPermissionToRole(ctx context.Context, roleID string, permissionID string, userID string) error {
	err := s.roleDAO.AssignPermissionToRole(ctx, roleID, permissionID)
	if err != nil {
		logger.Error("Error assigning permission to role", zap.Error(err), zap.String("roleID", roleID), zap.String("permissionID", permissionID))
		return fmt.Errorf("failed to assign permission to role: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventGrantChanged, roleID)

	logger.Info("Permission assigned to role", zap.String("roleID", roleID), zap.String("permissionID", permissionID), zap.String("userID", userID))
	return nil
}

// RemovePermissionFromRole detaches a catalog permission from a role
func (s *RoleService) RemovePermissionFromRole(ctx context.Context, roleID string, permissionID string, userID string) error {
	err := s.roleDAO.RemovePermissionFromRole(ctx, roleID, permissionID)
	if err != nil {
		logger.Error("Error removing permission from role", zap.Error(err), zap.String("roleID", roleID), zap.String("permissionID", permissionID))
		return fmt.Errorf("failed to remove permission from role: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventGrantChanged, roleID)

	logger.Info("Permission removed from role", zap.String("roleID", roleID), zap.String("permissionID", permissionID), zap.String("userID", userID))
	return nil
}

// GetRoleCodes returns the capability codes a role confers
func (s *RoleService) GetRoleCodes(ctx context.Context, roleID string) ([]string, error) {
	codes, err := s.roleDAO.GetRoleCodes(ctx, roleID)
	if err != nil {
		logger.Error("Error retrieving role codes", zap.Error(err), zap.String("roleID", roleID))
		return nil, fmt.Errorf("failed to retrieve role codes: %w", err)
	}

	return codes, nil
}

// AssignRoleToUser attaches a role to a user
func (s *RoleService) AssignRoleToUser(ctx context.Context, userID string, roleID string, requestorID string) error {
	err := s.roleDAO.AssignRoleToUser(ctx, userID, roleID)
	if err != nil {
		logger.Error("Error assigning role to user", zap.Error(err), zap.String("userID", userID), zap.String("roleID", roleID))
		return fmt.Errorf("failed to assign role to user: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventRoleAssigned, userID)

	logger.Info("Role assigned to user", zap.String("userID", userID), zap.String("roleID", roleID), zap.String("requestorID", requestorID))
	return nil
}

// RemoveRoleFromUser detaches a role from a user
func (s *RoleService) RemoveRoleFromUser(ctx context.Context, userID string, roleID string, requestorID string) error {
	err := s.roleDAO.RemoveRoleFromUser(ctx, userID, roleID)
	if err != nil {
		logger.Error("Error removing role from user", zap.Error(err), zap.String("userID", userID), zap.String("roleID", roleID))
		return fmt.Errorf("failed to remove role from user: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventRoleAssigned, userID)

	logger.Info("Role removed from user", zap.String("userID", userID), zap.String("roleID", roleID), zap.String("requestorID", requestorID))
	return nil
}

// GetRolesForUser retrieves all roles held by a user
func (s *RoleService) GetRolesForUser(ctx context.Context, userID string) ([]*model.Role, error) {
	roles, err := s.roleDAO.GetRolesForUser(ctx, userID)
	if err != nil {
		logger.Error("Error retrieving roles for user", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to retrieve roles for user: %w", err)
	}

	return roles, nil
}
