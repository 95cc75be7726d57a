// api/service/department_service.go
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

// IDepartmentService defines the interface for department operations
type IDepartmentService interface {
	CreateDepartment(ctx context.Context, dept model.Department, userID string) (*model.Department, error)
	UpdateDepartment(ctx context.Context, dept model.Department, userID string) (*model.Department, error)
	DeleteDepartment(ctx context.Context, deptID string, userID string) error
	GetDepartment(ctx context.Context, deptID string) (*model.Department, error)
	GetAncestry(ctx context.Context, deptID string) ([]*model.Department, error)
	GetChildDepartments(ctx context.Context, parentDeptID string) ([]*model.Department, error)
	GetDepartmentsByCompany(ctx context.Context, companyID string) ([]*model.Department, error)
}

// DepartmentService handles business logic for department operations
type DepartmentService struct {
	deptDAO         *dao.DepartmentDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ IDepartmentService = &DepartmentService{}

// NewDepartmentService creates a new instance of DepartmentService
func NewDepartmentService(deptDAO *dao.DepartmentDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus) *DepartmentService {
	service := &DepartmentService{
		deptDAO:         deptDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe("department.created", service.handleDepartmentCreated)
	eventBus.Subscribe("department.updated", service.handleDepartmentUpdated)
	eventBus.Subscribe("department.deleted", service.handleDepartmentDeleted)

	return service
}

func (s *DepartmentService) handleDepartmentCreated(ctx context.Context, event util.Event) error {
	dept := event.Payload.(model.Department)
	logger.Info("Department created event received", zap.String("deptID", dept.ID))

	if err := s.notificationSvc.NotifyDepartmentChange(ctx, "created", dept); err != nil {
		logger.Warn("Failed to send department creation notification", zap.Error(err), zap.String("deptID", dept.ID))
	}

	return nil
}

func (s *DepartmentService) handleDepartmentUpdated(ctx context.Context, event util.Event) error {
	payload := event.Payload.(map[string]model.Department)
	oldDept, newDept := payload["old"], payload["new"]

	logger.Info("Department updated event received",
		zap.String("deptID", newDept.ID),
		zap.Time("oldUpdatedAt", oldDept.UpdatedAt),
		zap.Time("newUpdatedAt", newDept.UpdatedAt))

	if err := s.notificationSvc.NotifyDepartmentChange(ctx, "updated", newDept); err != nil {
		logger.Warn("Failed to send department update notification", zap.Error(err), zap.String("deptID", newDept.ID))
		// Continue execution despite the error
	}

	if err := s.invalidateRelatedCaches(ctx, newDept.ID); err != nil {
		logger.Error("Failed to invalidate related caches", zap.Error(err), zap.String("deptID", newDept.ID))
		// Continue execution despite the error
	}

	return nil
}

func (s *DepartmentService) handleDepartmentDeleted(ctx context.Context, event util.Event) error {
	deptID := event.Payload.(string)
	logger.Info("Department deleted event received", zap.String("deptID", deptID))

	if err := s.notificationSvc.NotifyDepartmentChange(ctx, "deleted", model.Department{ID: deptID}); err != nil {
		logger.Warn("Failed to send department deletion notification", zap.Error(err), zap.String("deptID", deptID))
		// Continue execution despite the error
	}

	if err := s.invalidateRelatedCaches(ctx, deptID); err != nil {
		logger.Error("Failed to invalidate related caches", zap.Error(err), zap.String("deptID", deptID))
		// Continue execution despite the error
	}

	return nil
}

// CreateDepartment handles the creation of a new department
func (s *DepartmentService) CreateDepartment(ctx context.Context, dept model.Department, userID string) (*model.Department, error) {
	if err := s.validationUtil.ValidateDepartment(dept); err != nil {
		return nil, fmt.Errorf("invalid department: %w", err)
	}

	dept.CreatedAt = time.Now()
	dept.UpdatedAt = time.Now()

	deptID, err := s.deptDAO.CreateDepartment(ctx, dept)
	if err != nil {
		logger.Error("Error creating department", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	dept.ID = deptID

	// Update cache
	if err := s.cacheService.SetDepartment(ctx, dept); err != nil {
		logger.Warn("Failed to cache department", zap.Error(err), zap.String("deptID", deptID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "department.created", dept)
	s.eventBus.Publish(ctx, util.EventOrgChanged, deptID)

	logger.Info("Department created successfully", zap.String("deptID", deptID), zap.String("userID", userID))
	return &dept, nil
}

// UpdateDepartment handles updates to an existing department
func (s *DepartmentService) UpdateDepartment(ctx context.Context, dept model.Department, userID string) (*model.Department, error) {
	if err := s.validationUtil.ValidateDepartment(dept); err != nil {
		return nil, fmt.Errorf("invalid department: %w", err)
	}

	oldDept, err := s.deptDAO.GetDepartment(ctx, dept.ID)
	if err != nil {
		logger.Error("Error retrieving existing department", zap.Error(err), zap.String("deptID", dept.ID))
		return nil, err
	}

	dept.UpdatedAt = time.Now()

	updatedDept, err := s.deptDAO.UpdateDepartment(ctx, dept)
	if err != nil {
		logger.Error("Error updating department", zap.Error(err), zap.String("deptID", dept.ID), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to update department: %w", err)
	}

	// Update cache
	if err := s.cacheService.SetDepartment(ctx, *updatedDept); err != nil {
		logger.Warn("Failed to update department in cache", zap.Error(err), zap.String("deptID", dept.ID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "department.updated", map[string]model.Department{
		"old": *oldDept,
		"new": *updatedDept,
	})
	s.eventBus.Publish(ctx, util.EventOrgChanged, dept.ID)

	logger.Info("Department updated successfully", zap.String("deptID", dept.ID), zap.String("userID", userID))
	return updatedDept, nil
}

// DeleteDepartment handles the deletion of a department
func (s *DepartmentService) DeleteDepartment(ctx context.Context, deptID string, userID string) error {
	err := s.deptDAO.DeleteDepartment(ctx, deptID)
	if err != nil {
		logger.Error("Error deleting department", zap.Error(err), zap.String("deptID", deptID), zap.String("userID", userID))
		return fmt.Errorf("failed to delete department: %w", err)
	}

	// Remove from cache
	if err := s.cacheService.DeleteDepartment(ctx, deptID); err != nil {
		logger.Warn("Failed to delete department from cache", zap.Error(err), zap.String("deptID", deptID))
	}

	// Publish event for asynchronous processing
	s.eventBus.Publish(ctx, "department.deleted", deptID)
	s.eventBus.Publish(ctx, util.EventOrgChanged, deptID)

	logger.Info("Department deleted successfully", zap.String("deptID", deptID), zap.String("userID", userID))
	return nil
}

// GetDepartment retrieves a department by its ID
func (s *DepartmentService) GetDepartment(ctx context.Context, deptID string) (*model.Department, error) {
	// Try to get from cache first
	cachedDept, err := s.cacheService.GetDepartment(ctx, deptID)
	if err == nil && cachedDept != nil {
		return cachedDept, nil
	}

	dept, err := s.deptDAO.GetDepartment(ctx, deptID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			return nil, gate_errors.ErrDepartmentNotFound
		}
		logger.Error("Error retrieving department", zap.Error(err), zap.String("deptID", deptID))
		return nil, gate_errors.ErrInternalServer
	}

	// Update cache
	if err := s.cacheService.SetDepartment(ctx, *dept); err != nil {
		logger.Warn("Failed to cache department", zap.Error(err), zap.String("deptID", deptID))
	}

	return dept, nil
}

// GetAncestry retrieves the department chain from the root down to the given
// department, inclusive.
func (s *DepartmentService) GetAncestry(ctx context.Context, deptID string) ([]*model.Department, error) {
	chain, err := s.deptDAO.GetAncestry(ctx, deptID)
	if err != nil {
		logger.Error("Error retrieving department ancestry", zap.Error(err), zap.String("deptID", deptID))
		return nil, fmt.Errorf("failed to retrieve department ancestry: %w", err)
	}

	return chain, nil
}

// GetChildDepartments retrieves all immediate child departments of a given department
func (s *DepartmentService) GetChildDepartments(ctx context.Context, parentDeptID string) ([]*model.Department, error) {
	childDepts, err := s.deptDAO.GetChildDepartments(ctx, parentDeptID)
	if err != nil {
		logger.Error("Error retrieving child departments", zap.Error(err), zap.String("parentDeptID", parentDeptID))
		return nil, fmt.Errorf("failed to retrieve child departments: %w", err)
	}

	return childDepts, nil
}

// GetDepartmentsByCompany retrieves all departments for a given company
func (s *DepartmentService) GetDepartmentsByCompany(ctx context.Context, companyID string) ([]*model.Department, error) {
	depts, err := s.deptDAO.GetDepartmentsByCompany(ctx, companyID)
	if err != nil {
		logger.Error("Error retrieving departments by company", zap.Error(err), zap.String("companyID", companyID))
		return nil, fmt.Errorf("failed to retrieve departments by company: %w", err)
	}

	return depts, nil
}

// Helper methods

func (s *DepartmentService) invalidateRelatedCaches(ctx context.Context, deptID string) error {
	if err := s.cacheService.DeleteDepartment(ctx, deptID); err != nil {
		logger.Warn("Failed to delete department from cache", zap.Error(err), zap.String("deptID", deptID))
	}
	return nil
}
