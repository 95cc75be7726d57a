// api/controller/user_controller.go
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

type UserController struct {
	userService service.IUserService
	roleService service.IRoleService
}

func NewUserController(userService service.IUserService, roleService service.IRoleService) *UserController {
	return &UserController{
		userService: userService,
		roleService: roleService,
	}
}

// RegisterRoutes registers the API routes
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.DELETE("/:id", uc.DeleteUser)
		users.GET("/:id", uc.GetUser)
		users.GET("", uc.ListUsers)
		users.PUT("/:id/binding", uc.SetBinding)
		users.DELETE("/:id/binding", uc.ClearBinding)
		users.GET("/:id/binding", uc.GetBinding)
		users.POST("/:id/roles/:roleId", uc.AssignRole)
		users.DELETE("/:id/roles/:roleId", uc.RemoveRole)
		users.GET("/:id/roles", uc.GetRoles)
	}
}

// CreateUser endpoint
func (uc *UserController) CreateUser(c *gin.Context) {
	var user model.UserIdentity
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", gate_errors.ErrInvalidUserData)
		return
	}
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdUser, err := uc.userService.CreateUser(c, user, requestorID)
	if err != nil {
		switch err {
		case gate_errors.ErrUserConflict:
			util.RespondWithError(c, http.StatusConflict, "User already exists", err)
		case gate_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create user", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}

// DeleteUser endpoint
func (uc *UserController) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.userService.DeleteUser(c, userID, requestorID); err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	userID := c.Param("id")

	user, err := uc.userService.GetUser(c, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve user", err)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers endpoint
func (uc *UserController) ListUsers(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	users, err := uc.userService.ListUsers(c, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// SetBinding endpoint
func (uc *UserController) SetBinding(c *gin.Context) {
	userID := c.Param("id")
	var bindingRequest struct {
		PositionID string `json:"positionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&bindingRequest); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid binding data", err)
		return
	}
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.userService.SetBinding(c, userID, bindingRequest.PositionID, requestorID); err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrUserNotFound):
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		case errors.Is(err, gate_errors.ErrPositionNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Position not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to set binding", err)
		}
		return
	}

	c.Status(http.StatusOK)
}

// ClearBinding endpoint
func (uc *UserController) ClearBinding(c *gin.Context) {
	userID := c.Param("id")
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.userService.ClearBinding(c, userID, requestorID); err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to clear binding", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetBinding endpoint
func (uc *UserController) GetBinding(c *gin.Context) {
	userID := c.Param("id")

	unit, err := uc.userService.GetHomeUnit(c, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUserNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve binding", err)
		}
		return
	}
	if unit == nil {
		util.RespondWithError(c, http.StatusNotFound, "User has no binding", gate_errors.ErrUserNotBound)
		return
	}

	c.JSON(http.StatusOK, unit)
}

// AssignRole endpoint
func (uc *UserController) AssignRole(c *gin.Context) {
	userID := c.Param("id")
	roleID := c.Param("roleId")
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.roleService.AssignRoleToUser(c, userID, roleID, requestorID); err != nil {
		switch {
		case errors.Is(err, gate_errors.ErrUserNotFound):
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		case errors.Is(err, gate_errors.ErrRoleNotFound):
			util.RespondWithError(c, http.StatusNotFound, "Role not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to assign role", err)
		}
		return
	}

	c.Status(http.StatusOK)
}

// RemoveRole endpoint
func (uc *UserController) RemoveRole(c *gin.Context) {
	userID := c.Param("id")
	roleID := c.Param("roleId")
	requestorID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := uc.roleService.RemoveRoleFromUser(c, userID, roleID, requestorID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to remove role", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetRoles endpoint
func (uc *UserController) GetRoles(c *gin.Context) {
	userID := c.Param("id")

	roles, err := uc.roleService.GetRolesForUser(c, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve roles", err)
		return
	}

	c.JSON(http.StatusOK, roles)
}
