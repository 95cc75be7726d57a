// api/controller/access_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	gate_errors "github.com/qc-suite/gatekeeper/errors"
	"github.com/qc-suite/gatekeeper/middleware"
	"github.com/qc-suite/gatekeeper/registry"
	"github.com/qc-suite/gatekeeper/service"
	"github.com/qc-suite/gatekeeper/util"
)

type AccessController struct {
	accessService service.IAccessService
}

func NewAccessController(accessService service.IAccessService) *AccessController {
	return &AccessController{
		accessService: accessService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/resolve", ac.Resolve)
		access.POST("/scope", ac.Scope)
		access.POST("/can-edit", ac.CanEdit)
	}
}

type resolveRequest struct {
	Module     string `json:"module" binding:"required"`
	Capability string `json:"capability" binding:"required"`
}

// Resolve endpoint computes the scope tier the acting principal holds for one
// capability of one module.
func (ac *AccessController) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access request", err)
		return
	}

	capability, err := registry.ParseCapability(req.Capability)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Unknown capability kind", err)
		return
	}

	principal := middleware.PrincipalFromContext(c)
	decision := ac.accessService.Resolve(c, principal, req.Module, capability)

	c.JSON(http.StatusOK, gin.H{
		"module":     req.Module,
		"capability": capability,
		"tier":       decision.Tier.String(),
		"reason":     decision.Reason,
		"matched":    decision.Matched,
		"fault":      decision.Fault,
	})
}

type scopeRequest struct {
	Module     string `json:"module" binding:"required"`
	Capability string `json:"capability" binding:"required"`
	OwnerField string `json:"ownerField"`
}

// Scope endpoint resolves the tier and returns the declarative predicate the
// caller applies to its own record store.
func (ac *AccessController) Scope(c *gin.Context) {
	var req scopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid scope request", err)
		return
	}

	capability, err := registry.ParseCapability(req.Capability)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Unknown capability kind", err)
		return
	}
	if req.OwnerField == "" {
		req.OwnerField = "created_by"
	}

	principal := middleware.PrincipalFromContext(c)
	decision, predicate := ac.accessService.ScopeFor(c, principal, req.Module, capability, req.OwnerField)

	c.JSON(http.StatusOK, gin.H{
		"module":    req.Module,
		"tier":      decision.Tier.String(),
		"predicate": predicate,
		"fault":     decision.Fault,
	})
}

type canEditRequest struct {
	Module    string    `json:"module" binding:"required"`
	OwnerID   string    `json:"ownerId" binding:"required"`
	CreatedAt time.Time `json:"createdAt" binding:"required"`
}

// CanEdit endpoint decides whether the acting principal may modify a specific
// record given its owner and creation time.
func (ac *AccessController) CanEdit(c *gin.Context) {
	var req canEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid can-edit request", err)
		return
	}

	principal := middleware.PrincipalFromContext(c)
	allowed, err := ac.accessService.CanEditRecord(c, principal, req.Module, req.OwnerID, req.CreatedAt)
	if err != nil {
		if errors.Is(err, gate_errors.ErrUnknownModule) {
			util.RespondWithError(c, http.StatusBadRequest, "Unknown module", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to evaluate edit access", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"module":  req.Module,
		"ownerId": req.OwnerID,
		"allowed": allowed,
	})
}
