// api/service/permission_service.go
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

// IPermissionService defines the interface for catalog permission and direct
// org-unit grant operations
type IPermissionService interface {
	CreatePermission(ctx context.Context, permission model.Permission, userID string) (*model.Permission, error)
	DeletePermission(ctx context.Context, permissionID string, userID string) error
	GetPermission(ctx context.Context, permissionID string) (*model.Permission, error)
	GetPermissionByCode(ctx context.Context, code string) (*model.Permission, error)
	ListPermissions(ctx context.Context, limit int, offset int) ([]*model.Permission, error)
	CreateUnitGrant(ctx context.Context, grant model.OrgUnitGrant, userID string) (*model.OrgUnitGrant, error)
	DeleteUnitGrant(ctx context.Context, kind model.OrgUnitKind, unitID string, permissionID string, userID string) error
	UnitGrants(ctx context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error)
}

// PermissionService handles business logic for the permission catalog
type PermissionService struct {
	permissionDAO   *dao.PermissionDAO
	grantDAO        *dao.GrantDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IPermissionService = &PermissionService{}

func NewPermissionService(permissionDAO *dao.PermissionDAO, grantDAO *dao.GrantDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *PermissionService {
	service := &PermissionService{
		permissionDAO:   permissionDAO,
		grantDAO:        grantDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("permission.created", service.handlePermissionCreated)
	eventBus.Subscribe("permission.deleted", service.handlePermissionDeleted)

	return service
}

func (s *PermissionService) handlePermissionCreated(ctx context.Context, event util.Event) error {
	permission := event.Payload.(model.Permission)
	logger.Info("Permission created event received", zap.String("permissionID", permission.ID))

	if err := s.notificationSvc.NotifyPermissionChange(ctx, "created", permission); err != nil {
		logger.Warn("Failed to send permission creation notification", zap.Error(err), zap.String("permissionID", permission.ID))
	}

	return nil
}

func (s *PermissionService) handlePermissionDeleted(ctx context.Context, event util.Event) error {
	permissionID := event.Payload.(string)
	logger.Info("Permission deleted event received", zap.String("permissionID", permissionID))

	if err := s.notificationSvc.NotifyPermissionChange(ctx, "deleted", model.Permission{ID: permissionID}); err != nil {
		logger.Warn("Failed to send permission deletion notification", zap.Error(err), zap.String("permissionID", permissionID))
	}

	return nil
}

// CreatePermission registers a new capability in the catalog. The code is
// checked against the module registry so only codes from a registered
// module's family can exist.
func (s *PermissionService) CreatePermission(ctx context.Context, permission model.Permission, userID string) (*model.Permission, error) {
	if err := s.validationUtil.ValidatePermission(permission); err != nil {
		return nil, fmt.Errorf("invalid permission: %w", err)
	}

	permission.CreatedAt = time.Now()

	permissionID, err := s.permissionDAO.CreatePermission(ctx, permission)
	if err != nil {
		logger.Error("Error creating permission", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	permission.ID = permissionID

	s.eventBus.Publish(ctx, "permission.created", permission)

	logger.Info("Permission created successfully", zap.String("permissionID", permissionID), zap.String("userID", userID))
	return &permission, nil
}

// DeletePermission removes a capability and cascades every grant that
// references it
func (s *PermissionService) DeletePermission(ctx context.Context, permissionID string, userID string) error {
	err := s.permissionDAO.DeletePermission(ctx, permissionID)
	if err != nil {
		logger.Error("Error deleting permission", zap.Error(err), zap.String("permissionID", permissionID), zap.String("userID", userID))
		return fmt.Errorf("failed to delete permission: %w", err)
	}

	s.eventBus.Publish(ctx, "permission.deleted", permissionID)
	s.eventBus.Publish(ctx, util.EventGrantChanged, permissionID)

	logger.Info("Permission deleted successfully", zap.String("permissionID", permissionID), zap.String("userID", userID))
	return nil
}

// GetPermission retrieves a permission by its ID
func (s *PermissionService) GetPermission(ctx context.Context, permissionID string) (*model.Permission, error) {
	permission, err := s.permissionDAO.GetPermission(ctx, permissionID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPermissionNotFound) {
			return nil, gate_errors.ErrPermissionNotFound
		}
		logger.Error("Error retrieving permission", zap.Error(err), zap.String("permissionID", permissionID))
		return nil, gate_errors.ErrInternalServer
	}

	return permission, nil
}

// GetPermissionByCode retrieves a permission by its capability code
func (s *PermissionService) GetPermissionByCode(ctx context.Context, code string) (*model.Permission, error) {
	permission, err := s.permissionDAO.GetPermissionByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPermissionNotFound) {
			return nil, gate_errors.ErrPermissionNotFound
		}
		logger.Error("Error retrieving permission by code", zap.Error(err), zap.String("code", code))
		return nil, gate_errors.ErrInternalServer
	}

	return permission, nil
}

// ListPermissions retrieves all permissions, possibly with pagination
func (s *PermissionService) ListPermissions(ctx context.Context, limit int, offset int) ([]*model.Permission, error) {
	permissions, err := s.permissionDAO.ListPermissions(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing permissions", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}

	return permissions, nil
}

// CreateUnitGrant attaches a permission directly to an org unit
func (s *PermissionService) CreateUnitGrant(ctx context.Context, grant model.OrgUnitGrant, userID string) (*model.OrgUnitGrant, error) {
	if err := s.validationUtil.ValidateGrant(grant); err != nil {
		return nil, fmt.Errorf("invalid grant: %w", err)
	}

	grant.CreatedAt = time.Now()

	grantID, err := s.grantDAO.CreateUnitGrant(ctx, grant)
	if err != nil {
		logger.Error("Error creating unit grant", zap.Error(err), zap.String("unitID", grant.UnitID), zap.String("userID", userID))
		return nil, err
	}

	grant.ID = grantID

	if err := s.notificationSvc.NotifyGrantChange(ctx, "created", grant); err != nil {
		logger.Warn("Failed to send grant creation notification", zap.Error(err), zap.String("grantID", grantID))
	}
	s.eventBus.Publish(ctx, util.EventGrantChanged, grantID)

	logger.Info("Unit grant created successfully", zap.String("grantID", grantID), zap.String("userID", userID))
	return &grant, nil
}

// DeleteUnitGrant removes a direct grant from an org unit
func (s *PermissionService) DeleteUnitGrant(ctx context.Context, kind model.OrgUnitKind, unitID string, permissionID string, userID string) error {
	err := s.grantDAO.DeleteUnitGrant(ctx, kind, unitID, permissionID)
	if err != nil {
		logger.Error("Error deleting unit grant", zap.Error(err), zap.String("unitID", unitID), zap.String("permissionID", permissionID))
		return fmt.Errorf("failed to delete unit grant: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventGrantChanged, unitID)

	logger.Info("Unit grant deleted successfully", zap.String("unitID", unitID), zap.String("permissionID", permissionID), zap.String("userID", userID))
	return nil
}

// UnitGrants lists the direct grants attached to an org unit
func (s *PermissionService) UnitGrants(ctx context.Context, kind model.OrgUnitKind, unitID string) ([]*model.OrgUnitGrant, error) {
	grants, err := s.grantDAO.UnitGrants(ctx, kind, unitID)
	if err != nil {
		logger.Error("Error retrieving unit grants", zap.Error(err), zap.String("unitID", unitID))
		return nil, fmt.Errorf("failed to retrieve unit grants: %w", err)
	}

	return grants, nil
}
