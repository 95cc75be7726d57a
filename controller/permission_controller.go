// api/controller/permission_controller.go
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

type PermissionController struct {
	permissionService service.IPermissionService
}

func NewPermissionController(permissionService service.IPermissionService) *PermissionController {
	return &PermissionController{
		permissionService: permissionService,
	}
}

// RegisterRoutes registers the API routes
func (pc *PermissionController) RegisterRoutes(r *gin.RouterGroup) {
	permissions := r.Group("/permissions")
	{
		permissions.POST("", pc.CreatePermission)
		permissions.DELETE("/:id", pc.DeletePermission)
		permissions.GET("/:id", pc.GetPermission)
		permissions.GET("/code/:code", pc.GetPermissionByCode)
		permissions.GET("", pc.ListPermissions)
	}

	grants := r.Group("/grants")
	{
		grants.POST("", pc.CreateUnitGrant)
		grants.DELETE("/:kind/:unitId/:permissionId", pc.DeleteUnitGrant)
		grants.GET("/:kind/:unitId", pc.GetUnitGrants)
	}
}

// CreatePermission endpoint
func (pc *PermissionController) CreatePermission(c *gin.Context) {
	var permission model.Permission
	if err := c.ShouldBindJSON(&permission); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission data", gate_errors.ErrInvalidPermissionData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdPermission, err := pc.permissionService.CreatePermission(c, permission, userID)
	if err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrDuplicateCapability):
			util.RespondWithError(c, http.StatusConflict, "Capability code already registered", err)
		case errors.Is(err, gate_errors.ErrUnknownModule):
			util.RespondWithError(c, http.StatusBadRequest, "Capability code does not belong to a registered module", err)
		case errors.Is(err, gate_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create permission", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdPermission)
}

// DeletePermission endpoint
func (pc *PermissionController) DeletePermission(c *gin.Context) {
	permissionID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.permissionService.DeletePermission(c, permissionID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete permission", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPermission endpoint
func (pc *PermissionController) GetPermission(c *gin.Context) {
	permissionID := c.Param("id")

	permission, err := pc.permissionService.GetPermission(c, permissionID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve permission", err)
		}
		return
	}

	c.JSON(http.StatusOK, permission)
}

// GetPermissionByCode endpoint
func (pc *PermissionController) GetPermissionByCode(c *gin.Context) {
	code := c.Param("code")

	permission, err := pc.permissionService.GetPermissionByCode(c, code)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPermissionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve permission", err)
		}
		return
	}

	c.JSON(http.StatusOK, permission)
}

// ListPermissions endpoint
func (pc *PermissionController) ListPermissions(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	permissions, err := pc.permissionService.ListPermissions(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list permissions", err)
		return
	}

	c.JSON(http.StatusOK, permissions)
}

// CreateUnitGrant endpoint
func (pc *PermissionController) CreateUnitGrant(c *gin.Context) {
	var grant model.OrgUnitGrant
	if err := c.ShouldBindJSON(&grant); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", gate_errors.ErrInvalidGrantData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdGrant, err := pc.permissionService.CreateUnitGrant(c, grant, userID)
	if err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrPermissionNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		case errors.Is(err, gate_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create grant", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdGrant)
}

// DeleteUnitGrant endpoint
func (pc *PermissionController) DeleteUnitGrant(c *gin.Context) {
	kind := model.OrgUnitKind(c.Param("kind"))
	unitID := c.Param("unitId")
	permissionID := c.Param("permissionId")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.permissionService.DeleteUnitGrant(c, kind, unitID, permissionID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrGrantNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Grant not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete grant", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUnitGrants endpoint
func (pc *PermissionController) GetUnitGrants(c *gin.Context) {
	kind := model.OrgUnitKind(c.Param("kind"))
	unitID := c.Param("unitId")

	grants, err := pc.permissionService.UnitGrants(c, kind, unitID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve grants", err)
		return
	}

	c.JSON(http.StatusOK, grants)
}
