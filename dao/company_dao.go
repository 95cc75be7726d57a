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

type CompanyDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewCompanyDAO(driver neo4j.Driver, auditService audit.Service) *CompanyDAO {
	dao := &CompanyDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Company", zap.Error(err))
	}
	return dao
}

func (dao *CompanyDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_company_code IF NOT EXISTS
        FOR (c:` + gate_neo4j.LabelCompany + `) REQUIRE c.code IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Company code", zap.Error(err))
		return err
	}
	return nil
}

func (dao *CompanyDAO) CreateCompany(ctx context.Context, company model.Company) (string, error) {
	start := time.Now()
	logger.Info("Creating new company", zap.String("companyCode", company.Code))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if company.ID == "" {
		company.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		checkQuery := `
        MATCH (c:` + gate_neo4j.LabelCompany + ` {code: $code})
        RETURN c.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{"code": company.Code})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrCompanyConflict
		}

		query := `
        MERGE (c:` + gate_neo4j.LabelCompany + ` {id: $id})
        ON CREATE SET c += $props
        RETURN c.id as id
        `
		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id": company.ID,
			"props": map[string]interface{}{
				"code":      company.Code,
				"name":      company.Name,
				"active":    company.Active,
				"createdAt": now,
				"updatedAt": now,
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
		logger.Error("Failed to create company",
			zap.Error(err),
			zap.String("companyCode", company.Code),
			zap.Duration("duration", duration))
		return "", err
	}

	companyID := result.(string)
	logger.Info("Company created successfully",
		zap.String("companyID", companyID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelCompany,
		ResourceID:    companyID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &company),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return companyID, nil
}

func (dao *CompanyDAO) UpdateCompany(ctx context.Context, company model.Company) (*model.Company, error) {
	start := time.Now()
	logger.Info("Updating company", zap.String("companyID", company.ID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldCompany, err := dao.GetCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (c:` + gate_neo4j.LabelCompany + ` {id: $id})
        SET c.name = $name, c.active = $active, c.updatedAt = $updatedAt
        RETURN c.id as id
        `
		params := map[string]interface{}{
			"id":        company.ID,
			"name":      company.Name,
			"active":    company.Active,
			"updatedAt": time.Now().Format(time.RFC3339),
		}
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrCompanyNotFound
	})
	if err != nil {
		logger.Error("Failed to update company",
			zap.Error(err),
			zap.String("companyID", company.ID),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	updated, err := dao.GetCompany(ctx, company.ID)
	if err != nil {
		return nil, err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "UPDATE_" + gate_neo4j.LabelCompany,
		ResourceID:    company.ID,
		AccessGranted: true,
		ChangeDetails: changeDetails(oldCompany, updated),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updated, nil
}

func (dao *CompanyDAO) DeleteCompany(ctx context.Context, companyID string) error {
	start := time.Now()
	logger.Info("Deleting company", zap.String("companyID", companyID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (c:` + gate_neo4j.LabelCompany + ` {id: $id})
        DETACH DELETE c
        RETURN count(c) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": companyID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrCompanyNotFound
	})
	if err != nil {
		logger.Error("Failed to delete company",
			zap.Error(err),
			zap.String("companyID", companyID),
			zap.Duration("duration", time.Since(start)))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelCompany,
		ResourceID:    companyID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *CompanyDAO) GetCompany(ctx context.Context, companyID string) (*model.Company, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (c:` + gate_neo4j.LabelCompany + ` {id: $id})
    RETURN c
    `
	result, err := session.Run(query, map[string]interface{}{"id": companyID})
	if err != nil {
		logger.Error("Failed to execute get company query",
			zap.Error(err),
			zap.String("companyID", companyID))
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToCompany(node), nil
	}

	return nil, gate_errors.ErrCompanyNotFound
}

func (dao *CompanyDAO) GetCompanyByCode(ctx context.Context, code string) (*model.Company, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (c:` + gate_neo4j.LabelCompany + ` {code: $code})
    RETURN c
    `
	result, err := session.Run(query, map[string]interface{}{"code": code})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToCompany(node), nil
	}

	return nil, gate_errors.ErrCompanyNotFound
}

func (dao *CompanyDAO) ListCompanies(ctx context.Context, limit int, offset int) ([]*model.Company, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (c:` + gate_neo4j.LabelCompany + `)
    RETURN c
    ORDER BY c.code
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

	var companies []*model.Company
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		companies = append(companies, mapNodeToCompany(node))
	}

	return companies, nil
}

func mapNodeToCompany(node neo4j.Node) *model.Company {
	props := node.Props
	company := &model.Company{}

	company.ID = props["id"].(string)
	company.Code = props["code"].(string)
	company.Name = props["name"].(string)
	if active, ok := props["active"].(bool); ok {
		company.Active = active
	}
	company.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	company.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return company
}
