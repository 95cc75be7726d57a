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

type DepartmentDAO struct {
	Driver       neo4j.Driver
	AuditService audit.Service
}

func NewDepartmentDAO(driver neo4j.Driver, auditService audit.Service) *DepartmentDAO {
	dao := &DepartmentDAO{Driver: driver, AuditService: auditService}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Department", zap.Error(err))
	}
	return dao
}

func (dao *DepartmentDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_dept_id IF NOT EXISTS
        FOR (d:` + gate_neo4j.LabelDepartment + `) REQUIRE d.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Department ID", zap.Error(err))
		return err
	}
	return nil
}

func (dao *DepartmentDAO) CreateDepartment(ctx context.Context, department model.Department) (string, error) {
	start := time.Now()
	logger.Info("Creating new department", zap.String("deptCode", department.Code))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if department.ID == "" {
		department.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		// Department codes are unique within a company, not globally.
		checkQuery := `
        MATCH (d:` + gate_neo4j.LabelDepartment + ` {code: $code, companyID: $companyID})
        RETURN d.id
        `
		existing, err := transaction.Run(checkQuery, map[string]interface{}{
			"code":      department.Code,
			"companyID": department.CompanyID,
		})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if existing.Next() {
			return nil, gate_errors.ErrDepartmentConflict
		}

		query := `
        MERGE (d:` + gate_neo4j.LabelDepartment + ` {id: $id})
        ON CREATE SET d += $props
        WITH d
        MATCH (c:` + gate_neo4j.LabelCompany + ` {id: $companyID})
        MERGE (d)-[:` + gate_neo4j.RelPartOf + `]->(c)
        `
		if department.ParentID != "" {
			query += `
        WITH d
        MATCH (p:` + gate_neo4j.LabelDepartment + ` {id: $parentID})
        MERGE (d)-[:` + gate_neo4j.RelChildOf + `]->(p)
        `
		}
		query += `
        RETURN d.id as id
        `

		now := time.Now().Format(time.RFC3339)
		params := map[string]interface{}{
			"id":        department.ID,
			"companyID": department.CompanyID,
			"parentID":  department.ParentID,
			"props": map[string]interface{}{
				"code":      department.Code,
				"name":      department.Name,
				"companyID": department.CompanyID,
				"parentID":  department.ParentID,
				"level":     department.Level,
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
		return nil, gate_errors.ErrCompanyNotFound
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create department",
			zap.Error(err),
			zap.String("deptCode", department.Code),
			zap.Duration("duration", duration))
		return "", err
	}

	deptID := result.(string)
	logger.Info("Department created successfully",
		zap.String("deptID", deptID),
		zap.Duration("duration", duration))

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "CREATE_" + gate_neo4j.LabelDepartment,
		ResourceID:    deptID,
		AccessGranted: true,
		ChangeDetails: changeDetails(nil, &department),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return deptID, nil
}

func (dao *DepartmentDAO) UpdateDepartment(ctx context.Context, department model.Department) (*model.Department, error) {
	start := time.Now()
	logger.Info("Updating department", zap.String("deptID", department.ID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	oldDept, err := dao.GetDepartment(ctx, department.ID)
	if err != nil {
		return nil, err
	}

	_, err = session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $id})
        SET d.name = $name, d.level = $level, d.updatedAt = $updatedAt
        RETURN d.id as id
        `
		params := map[string]interface{}{
			"id":        department.ID,
			"name":      department.Name,
			"level":     department.Level,
			"updatedAt": time.Now().Format(time.RFC3339),
		}
		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() {
			return result.Record().Values[0], nil
		}
		return nil, gate_errors.ErrDepartmentNotFound
	})
	if err != nil {
		logger.Error("Failed to update department",
			zap.Error(err),
			zap.String("deptID", department.ID),
			zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	updated, err := dao.GetDepartment(ctx, department.ID)
	if err != nil {
		return nil, err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "UPDATE_" + gate_neo4j.LabelDepartment,
		ResourceID:    department.ID,
		AccessGranted: true,
		ChangeDetails: changeDetails(oldDept, updated),
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return updated, nil
}

func (dao *DepartmentDAO) DeleteDepartment(ctx context.Context, deptID string) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $id})
        DETACH DELETE d
        RETURN count(d) as deleted
        `
		result, err := transaction.Run(query, map[string]interface{}{"id": deptID})
		if err != nil {
			return nil, gate_errors.ErrDatabaseOperation
		}
		if result.Next() && result.Record().Values[0].(int64) > 0 {
			return nil, nil
		}
		return nil, gate_errors.ErrDepartmentNotFound
	})
	if err != nil {
		logger.Error("Failed to delete department", zap.Error(err), zap.String("deptID", deptID))
		return err
	}

	auditLog := audit.AuditLog{
		Timestamp:     time.Now(),
		UserID:        requestingUser(ctx),
		Action:        "DELETE_" + gate_neo4j.LabelDepartment,
		ResourceID:    deptID,
		AccessGranted: true,
	}
	if err := dao.AuditService.LogAccess(ctx, auditLog); err != nil {
		logger.Error("Failed to create audit log", zap.Error(err))
	}

	return nil
}

func (dao *DepartmentDAO) GetDepartment(ctx context.Context, deptID string) (*model.Department, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $id})
    RETURN d
    `
	result, err := session.Run(query, map[string]interface{}{"id": deptID})
	if err != nil {
		logger.Error("Failed to execute get department query",
			zap.Error(err),
			zap.String("deptID", deptID))
		return nil, gate_errors.ErrDatabaseOperation
	}

	if result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		return mapNodeToDepartment(node), nil
	}

	return nil, gate_errors.ErrDepartmentNotFound
}

// GetAncestry returns the department chain ordered root to self, inclusive.
// Used to expand inherited org-unit grants down the tree.
func (dao *DepartmentDAO) GetAncestry(ctx context.Context, deptID string) ([]*model.Department, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:` + gate_neo4j.LabelDepartment + ` {id: $id})
    OPTIONAL MATCH path = (d)-[:` + gate_neo4j.RelChildOf + `*]->(a:` + gate_neo4j.LabelDepartment + `)
    WITH d, collect(a) as ancestors
    RETURN d, ancestors
    `
	result, err := session.Run(query, map[string]interface{}{"id": deptID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	if !result.Next() {
		return nil, gate_errors.ErrDepartmentNotFound
	}

	record := result.Record()
	self := mapNodeToDepartment(record.Values[0].(neo4j.Node))

	var chain []*model.Department
	if ancestors, ok := record.Values[1].([]interface{}); ok {
		// Ancestors come back nearest-first; reverse into root-first order.
		for i := len(ancestors) - 1; i >= 0; i-- {
			node, ok := ancestors[i].(neo4j.Node)
			if !ok {
				continue
			}
			chain = append(chain, mapNodeToDepartment(node))
		}
	}
	chain = append(chain, self)

	return chain, nil
}

func (dao *DepartmentDAO) GetChildDepartments(ctx context.Context, parentID string) ([]*model.Department, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:` + gate_neo4j.LabelDepartment + `)-[:` + gate_neo4j.RelChildOf + `]->(p:` + gate_neo4j.LabelDepartment + ` {id: $parentID})
    RETURN d
    ORDER BY d.code
    `
	result, err := session.Run(query, map[string]interface{}{"parentID": parentID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var departments []*model.Department
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		departments = append(departments, mapNodeToDepartment(node))
	}

	return departments, nil
}

func (dao *DepartmentDAO) GetDepartmentsByCompany(ctx context.Context, companyID string) ([]*model.Department, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	query := `
    MATCH (d:` + gate_neo4j.LabelDepartment + `)-[:` + gate_neo4j.RelPartOf + `]->(c:` + gate_neo4j.LabelCompany + ` {id: $companyID})
    RETURN d
    ORDER BY d.level, d.code
    `
	result, err := session.Run(query, map[string]interface{}{"companyID": companyID})
	if err != nil {
		return nil, gate_errors.ErrDatabaseOperation
	}

	var departments []*model.Department
	for result.Next() {
		node := result.Record().Values[0].(neo4j.Node)
		departments = append(departments, mapNodeToDepartment(node))
	}

	return departments, nil
}

func mapNodeToDepartment(node neo4j.Node) *model.Department {
	props := node.Props
	department := &model.Department{}

	department.ID = props["id"].(string)
	department.Code = props["code"].(string)
	department.Name = props["name"].(string)
	department.CompanyID = props["companyID"].(string)
	if parentID, ok := props["parentID"].(string); ok {
		department.ParentID = parentID
	}
	if level, ok := props["level"].(int64); ok {
		department.Level = int(level)
	}
	department.CreatedAt = helper_util.ParseOptionalTime(props["createdAt"])
	department.UpdatedAt = helper_util.ParseOptionalTime(props["updatedAt"])

	return department
}
