// api/controller/role_controller.go
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

type RoleController struct {
	roleService service.IRoleService
}

func NewRoleController(roleService service.IRoleService) *RoleController {
	return &RoleController{
		roleService: roleService,
	}
}

// RegisterRoutes registers the API routes
func (rc *RoleController) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles")
	{
		roles.POST("", rc.CreateRole)
		roles.DELETE("/:id", rc.DeleteRole)
		roles.GET("/:id", rc.GetRole)
		roles.GET("", rc.ListRoles)
		roles.GET("/:id/codes", rc.GetRoleCodes)
		roles.POST("/:id/permissions/:permissionId", rc.AssignPermission)
		roles.DELETE("/:id/permissions/:permissionId", rc.RemovePermission)
	}
}

// CreateRole endpoint
func (rc *RoleController) CreateRole(c *gin.Context) {
	var role model.Role
	if err := c.ShouldBindJSON(&role); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid role data", gate_errors.ErrInvalidRoleData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdRole, err := rc.roleService.CreateRole(c, role, userID)
	if err != nil {
		switch err {
		case gate_errors.ErrRoleConflict:
			util.RespondWithError(c, http.StatusConflict, "Role already exists", err)
		case gate_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create role", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdRole)
}

// DeleteRole endpoint
func (rc *RoleController) DeleteRole(c *gin.Context) {
	roleID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.roleService.DeleteRole(c, roleID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete role", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRole endpoint
func (rc *RoleController) GetRole(c *gin.Context) {
	roleID := c.Param("id")

	role, err := rc.roleService.GetRole(c, roleID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrRoleNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve role", err)
		}
		return
	}

	c.JSON(http.StatusOK, role)
}

// ListRoles endpoint
func (rc *RoleController) ListRoles(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	roles, err := rc.roleService.ListRoles(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}

	c.JSON(http.StatusOK, roles)
}

// GetRoleCodes endpoint
func (rc *RoleController) GetRoleCodes(c *gin.Context) {
	roleID := c.Param("id")

	codes, err := rc.roleService.GetRoleCodes(c, roleID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve role codes", err)
		return
	}

	c.JSON(http.StatusOK, codes)
}

// AssignPermission endpoint
func (rc *RoleController) AssignPermission(c *gin.Context) {
	roleID := c.Param("id")
	permissionID := c.Param("permissionId")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.roleService.AssignPermissionToRole(c, roleID, permissionID, userID); err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		case errors.Is(err, gate_errors.ErrPermissionNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Permission not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to assign permission", err)
		}
		return
	}

	c.Status(http.StatusOK)
}

// RemovePermission endpoint
func (rc *RoleController) RemovePermission(c *gin.Context) {
	roleID := c.Param("id")
	permissionID := c.Param("permissionId")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := rc.roleService.RemovePermissionFromRole(c, roleID, permissionID, userID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to remove permission", err)
		return
	}

	c.Status(http.StatusNoContent)
}
