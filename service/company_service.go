// api/service/company_service.go
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

// ICompanyService defines the interface for company operations
type ICompanyService interface {
	CreateCompany(ctx context.Context, company model.Company, userID string) (*model.Company, error)
	UpdateCompany(ctx context.Context, company model.Company, userID string) (*model.Company, error)
	DeleteCompany(ctx context.Context, companyID string, userID string) error
	GetCompany(ctx context.Context, companyID string) (*model.Company, error)
	GetCompanyByCode(ctx context.Context, code string) (*model.Company, error)
	ListCompanies(ctx context.Context, limit int, offset int) ([]*model.Company, error)
}

// CompanyService handles business logic for company operations
type CompanyService struct {
	companyDAO      *dao.CompanyDAO
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

var _ ICompanyService = &CompanyService{}

func NewCompanyService(companyDAO *dao.CompanyDAO, validationUtil *util.ValidationUtil, notificationSvc *util.NotificationService, eventBus *util.EventBus) *CompanyService {
	service := &CompanyService{
		companyDAO:      companyDAO,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	eventBus.Subscribe("company.created", service.handleCompanyCreated)
	eventBus.Subscribe("company.deleted", service.handleCompanyDeleted)

	return service
}

func (s *CompanyService) handleCompanyCreated(ctx context.Context, event util.Event) error {
	company := event.Payload.(model.Company)
	logger.Info("Company created event received", zap.String("companyID", company.ID))

	if err := s.notificationSvc.NotifyCompanyChange(ctx, "created", company); err != nil {
		logger.Warn("Failed to send company creation notification", zap.Error(err), zap.String("companyID", company.ID))
	}

	return nil
}

func (s *CompanyService) handleCompanyDeleted(ctx context.Context, event util.Event) error {
	companyID := event.Payload.(string)
	logger.Info("Company deleted event received", zap.String("companyID", companyID))

	if err := s.notificationSvc.NotifyCompanyChange(ctx, "deleted", model.Company{ID: companyID}); err != nil {
		logger.Warn("Failed to send company deletion notification", zap.Error(err), zap.String("companyID", companyID))
	}

	return nil
}

// CreateCompany handles the creation of a new company
func (s *CompanyService) CreateCompany(ctx context.Context, company model.Company, userID string) (*model.Company, error) {
	if err := s.validationUtil.ValidateCompany(company); err != nil {
		return nil, fmt.Errorf("invalid company: %w", err)
	}

	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	companyID, err := s.companyDAO.CreateCompany(ctx, company)
	if err != nil {
		logger.Error("Error creating company", zap.Error(err), zap.String("userID", userID))
		return nil, err
	}

	company.ID = companyID

	s.eventBus.Publish(ctx, "company.created", company)

	logger.Info("Company created successfully", zap.String("companyID", companyID), zap.String("userID", userID))
	return &company, nil
}

// UpdateCompany handles updates to an existing company
func (s *CompanyService) UpdateCompany(ctx context.Context, company model.Company, userID string) (*model.Company, error) {
	if err := s.validationUtil.ValidateCompany(company); err != nil {
		return nil, fmt.Errorf("invalid company: %w", err)
	}

	company.UpdatedAt = time.Now()

	updatedCompany, err := s.companyDAO.UpdateCompany(ctx, company)
	if err != nil {
		logger.Error("Error updating company", zap.Error(err), zap.String("companyID", company.ID), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	s.eventBus.Publish(ctx, util.EventOrgChanged, updatedCompany.ID)

	logger.Info("Company updated successfully", zap.String("companyID", company.ID), zap.String("userID", userID))
	return updatedCompany, nil
}

// DeleteCompany handles the deletion of a company
func (s *CompanyService) DeleteCompany(ctx context.Context, companyID string, userID string) error {
	err := s.companyDAO.DeleteCompany(ctx, companyID)
	if err != nil {
		logger.Error("Error deleting company", zap.Error(err), zap.String("companyID", companyID), zap.String("userID", userID))
		return fmt.Errorf("failed to delete company: %w", err)
	}

	s.eventBus.Publish(ctx, "company.deleted", companyID)
	s.eventBus.Publish(ctx, util.EventOrgChanged, companyID)

	logger.Info("Company deleted successfully", zap.String("companyID", companyID), zap.String("userID", userID))
	return nil
}

// GetCompany retrieves a company by its ID
func (s *CompanyService) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	company, err := s.companyDAO.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			return nil, gate_errors.ErrCompanyNotFound
		}
		logger.Error("Error retrieving company", zap.Error(err), zap.String("companyID", companyID))
		return nil, gate_errors.ErrInternalServer
	}

	return company, nil
}

// GetCompanyByCode retrieves a company by its unique code
func (s *CompanyService) GetCompanyByCode(ctx context.Context, code string) (*model.Company, error) {
	company, err := s.companyDAO.GetCompanyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			return nil, gate_errors.ErrCompanyNotFound
		}
		logger.Error("Error retrieving company by code", zap.Error(err), zap.String("code", code))
		return nil, gate_errors.ErrInternalServer
	}

	return company, nil
}

// ListCompanies retrieves all companies, possibly with pagination
func (s *CompanyService) ListCompanies(ctx context.Context, limit int, offset int) ([]*model.Company, error) {
	companies, err := s.companyDAO.ListCompanies(ctx, limit, offset)
	if err != nil {
		logger.Error("Error listing companies", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	return companies, nil
}
