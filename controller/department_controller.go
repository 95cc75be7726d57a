// api/controller/department_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/service"
	"github.com/qc-suite/gatekeeper/util"
)

type DepartmentController struct {
	departmentService service.IDepartmentService
}

func NewDepartmentController(departmentService service.IDepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// RegisterRoutes registers the API routes
func (dc *DepartmentController) RegisterRoutes(r *gin.RouterGroup) {
	departments := r.Group("/departments")
	{
		departments.POST("", dc.CreateDepartment)
		departments.PUT("/:id", dc.UpdateDepartment)
		departments.DELETE("/:id", dc.DeleteDepartment)
		departments.GET("/:id", dc.GetDepartment)
		departments.GET("/:id/ancestry", dc.GetAncestry)
		departments.GET("/:id/children", dc.GetChildDepartments)
		departments.GET("/company/:companyId", dc.GetDepartmentsByCompany)
	}
}

// CreateDepartment endpoint
func (dc *DepartmentController) CreateDepartment(c *gin.Context) {
	var dept model.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid department data", gate_errors.ErrInvalidDepartmentData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdDept, err := dc.departmentService.CreateDepartment(c, dept, userID)
	if err != nil {
		switch err {
		case gate_errors.ErrDepartmentConflict:
			util.RespondWithError(c, http.StatusConflict, "Department already exists", err)
		case gate_errors.ErrCompanyNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Company not found", err)
		case gate_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create department", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdDept)
}

// UpdateDepartment endpoint
func (dc *DepartmentController) UpdateDepartment(c *gin.Context) {
	deptID := c.Param("id")
	var dept model.Department
	if err := c.ShouldBindJSON(&dept); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid department data", err)
		return
	}
	dept.ID = deptID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedDept, err := dc.departmentService.UpdateDepartment(c, dept, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update department", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedDept)
}

// DeleteDepartment endpoint
func (dc *DepartmentController) DeleteDepartment(c *gin.Context) {
	deptID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := dc.departmentService.DeleteDepartment(c, deptID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete department", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetDepartment endpoint
func (dc *DepartmentController) GetDepartment(c *gin.Context) {
	deptID := c.Param("id")

	dept, err := dc.departmentService.GetDepartment(c, deptID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve department", err)
		}
		return
	}

	c.JSON(http.StatusOK, dept)
}

// GetAncestry endpoint
func (dc *DepartmentController) GetAncestry(c *gin.Context) {
	deptID := c.Param("id")

	chain, err := dc.departmentService.GetAncestry(c, deptID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve department ancestry", err)
		}
		return
	}

	c.JSON(http.StatusOK, chain)
}

// GetChildDepartments endpoint
func (dc *DepartmentController) GetChildDepartments(c *gin.Context) {
	deptID := c.Param("id")

	children, err := dc.departmentService.GetChildDepartments(c, deptID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrDepartmentNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve child departments", err)
		}
		return
	}

	c.JSON(http.StatusOK, children)
}

// GetDepartmentsByCompany endpoint
func (dc *DepartmentController) GetDepartmentsByCompany(c *gin.Context) {
	companyID := c.Param("companyId")

	depts, err := dc.departmentService.GetDepartmentsByCompany(c, companyID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve departments", err)
		return
	}

	c.JSON(http.StatusOK, depts)
}
