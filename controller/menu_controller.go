// api/controller/menu_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/middleware"
	"github.com/qc-suite/gatekeeper/model"
	"github.com/qc-suite/gatekeeper/service"
	"github.com/qc-suite/gatekeeper/util"
)

type MenuController struct {
	menuService service.IMenuService
}

func NewMenuController(menuService service.IMenuService) *MenuController {
	return &MenuController{
		menuService: menuService,
	}
}

// RegisterRoutes registers the API routes
func (mc *MenuController) RegisterRoutes(r *gin.RouterGroup) {
	menus := r.Group("/menus")
	{
		menus.PUT("/:name", mc.UpsertMenuList)
		menus.GET("/:name", mc.GetMenuList)
		menus.DELETE("/:name", mc.DeleteMenuList)
		menus.GET("/:name/allowed", mc.CheckAllowed)
	}
}

// UpsertMenuList endpoint
func (mc *MenuController) UpsertMenuList(c *gin.Context) {
	menuName := c.Param("name")
	var menu model.MenuAccessList
	if err := c.ShouldBindJSON(&menu); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid menu access list data", gate_errors.ErrInvalidMenuData)
		return
	}
	menu.MenuName = menuName
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	updatedMenu, err := mc.menuService.UpsertMenuList(c, menu, userID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to upsert menu access list", err)
		return
	}

	c.JSON(http.StatusOK, updatedMenu)
}

// GetMenuList endpoint
func (mc *MenuController) GetMenuList(c *gin.Context) {
	menuName := c.Param("name")

	menu, err := mc.menuService.GetMenuList(c, menuName)
	if err != nil {
		if errors.Is(err, gate_errors.ErrMenuNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Menu access list not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve menu access list", err)
		}
		return
	}

	c.JSON(http.StatusOK, menu)
}

// DeleteMenuList endpoint
func (mc *MenuController) DeleteMenuList(c *gin.Context) {
	menuName := c.Param("name")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := mc.menuService.DeleteMenuList(c, menuName, userID); err != nil {
		if errors.Is(err, gate_errors.ErrMenuNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Menu access list not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete menu access list", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// CheckAllowed endpoint reports whether the acting principal may see a menu
func (mc *MenuController) CheckAllowed(c *gin.Context) {
	menuName := c.Param("name")
	principal := middleware.PrincipalFromContext(c)

	allowed, err := mc.menuService.IsAllowed(c, menuName, principal)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to check menu access", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": menuName, "allowed": allowed})
}
