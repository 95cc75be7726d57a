// api/controller/param_controller.go
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

type ParamController struct {
	paramService service.IParamService
}

func NewParamController(paramService service.IParamService) *ParamController {
	return &ParamController{
		paramService: paramService,
	}
}

// RegisterRoutes registers the API routes
func (pc *ParamController) RegisterRoutes(r *gin.RouterGroup) {
	params := r.Group("/parameters")
	{
		params.PUT("/:key", pc.SetParameter)
		params.GET("/:key", pc.GetParameter)
		params.GET("", pc.ListParameters)
	}
}

// SetParameter endpoint
func (pc *ParamController) SetParameter(c *gin.Context) {
	key := c.Param("key")
	var param model.OverrideParameter
	if err := c.ShouldBindJSON(&param); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid parameter data", err)
		return
	}
	param.Key = key
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	if err := pc.paramService.SetParameter(c, param, userID); err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to set parameter", err)
		return
	}

	c.Status(http.StatusOK)
}

// GetParameter endpoint
func (pc *ParamController) GetParameter(c *gin.Context) {
	key := c.Param("key")

	param, err := pc.paramService.GetParameter(c, key)
	if err != nil {
		if errors.Is(err, gate_errors.ErrParameterNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Parameter not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve parameter", err)
		}
		return
	}

	c.JSON(http.StatusOK, param)
}

// ListParameters endpoint
func (pc *ParamController) ListParameters(c *gin.Context) {
	params, err := pc.paramService.ListParameters(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list parameters", err)
		return
	}

	c.JSON(http.StatusOK, params)
}
