// api/controller/company_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/service"
	"github.com/qc-suite/gatekeeper/util"
	helper_util "github.com/qc-suite/gatekeeper/util/helper"
)

type CompanyController struct {
	companyService service.ICompanyService
}

func NewCompanyController(companyService service.ICompanyService) *CompanyController {
	return &CompanyController{
		companyService: companyService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CompanyController) RegisterRoutes(r *gin.RouterGroup) {
	companies := r.Group("/companies")
	{
		companies.POST("", cc.CreateCompany)
		companies.PUT("/:id", cc.UpdateCompany)
		companies.DELETE("/:id", cc.DeleteCompany)
		companies.GET("/:id", cc.GetCompany)
		companies.GET("", cc.ListCompanies)
		companies.GET("/code/:code", cc.GetCompanyByCode)
	}
}

// CreateCompany endpoint
func (cc *CompanyController) CreateCompany(c *gin.Context) {
	var company model.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid company data", gate_errors.ErrInvalidCompanyData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdCompany, err := cc.companyService.CreateCompany(c, company, userID)
	if err != nil {
		switch err {
		case gate_errors.ErrCompanyConflict:
			util.RespondWithError(c, http.StatusConflict, "Company already exists", err)
		case gate_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create company", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdCompany)
}

// UpdateCompany endpoint
func (cc *CompanyController) UpdateCompany(c *gin.Context) {
	companyID := c.Param("id")
	var company model.Company
	if err := c.ShouldBindJSON(&company); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid company data", err)
		return
	}
	company.ID = companyID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedCompany, err := cc.companyService.UpdateCompany(c, company, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Company not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update company", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedCompany)
}

// DeleteCompany endpoint
func (cc *CompanyController) DeleteCompany(c *gin.Context) {
	companyID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := cc.companyService.DeleteCompany(c, companyID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Company not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete company", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCompany endpoint
func (cc *CompanyController) GetCompany(c *gin.Context) {
	companyID := c.Param("id")

	company, err := cc.companyService.GetCompany(c, companyID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Company not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve company", err)
		}
		return
	}

	c.JSON(http.StatusOK, company)
}

// GetCompanyByCode endpoint
func (cc *CompanyController) GetCompanyByCode(c *gin.Context) {
	code := c.Param("code")

	company, err := cc.companyService.GetCompanyByCode(c, code)
	if err != nil {
		if errors.Is(err, gate_errors.ErrCompanyNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Company not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve company", err)
		}
		return
	}

	c.JSON(http.StatusOK, company)
}

// ListCompanies endpoint
func (cc *CompanyController) ListCompanies(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	companies, err := cc.companyService.ListCompanies(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list companies", err)
		return
	}

	c.JSON(http.StatusOK, companies)
}
