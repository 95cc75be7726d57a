// api/controller/position_controller.go
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

type PositionController struct {
	positionService service.IPositionService
}

func NewPositionController(positionService service.IPositionService) *PositionController {
	return &PositionController{
		positionService: positionService,
	}
}

// RegisterRoutes registers the API routes
func (pc *PositionController) RegisterRoutes(r *gin.RouterGroup) {
	positions := r.Group("/positions")
	{
		positions.POST("", pc.CreatePosition)
		positions.PUT("/:id", pc.UpdatePosition)
		positions.DELETE("/:id", pc.DeletePosition)
		positions.GET("/:id", pc.GetPosition)
		positions.GET("/department/:departmentId", pc.GetPositionsByDepartment)
	}
}

// CreatePosition endpoint
func (pc *PositionController) CreatePosition(c *gin.Context) {
	var position model.Position
	if err := c.ShouldBindJSON(&position); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid position data", gate_errors.ErrInvalidPositionData)
		return
	}
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", gate_errors.ErrUnauthorized)
		return
	}

	createdPosition, err := pc.positionService.CreatePosition(c, position, userID)
	if err != nil {
		switch err {
		case gate_errors.ErrPositionConflict:
			util.RespondWithError(c, http.StatusConflict, "Position already exists", err)
		case gate_errors.ErrDepartmentNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Department not found", err)
		case gate_errors.ErrCompanyMismatch:
			util.RespondWithError(c, http.StatusConflict, "Position and department belong to different companies", err)
		case gate_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create position", gate_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, createdPosition)
}

// UpdatePosition endpoint
func (pc *PositionController) UpdatePosition(c *gin.Context) {
	positionID := c.Param("id")
	var position model.Position
	if err := c.ShouldBindJSON(&position); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid position data", err)
		return
	}
	position.ID = positionID
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	updatedPosition, err := pc.positionService.UpdatePosition(c, position, userID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPositionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Position not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update position", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedPosition)
}

// DeletePosition endpoint
func (pc *PositionController) DeletePosition(c *gin.Context) {
	positionID := c.Param("id")
	userID, err := util.GetUserIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := pc.positionService.DeletePosition(c, positionID, userID); err != nil {
		if errors.Is(err, gate_errors.ErrPositionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Position not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete position", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPosition endpoint
func (pc *PositionController) GetPosition(c *gin.Context) {
	positionID := c.Param("id")

	position, err := pc.positionService.GetPosition(c, positionID)
	if err != nil {
		if errors.Is(err, gate_errors.ErrPositionNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Position not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve position", err)
		}
		return
	}

	c.JSON(http.StatusOK, position)
}

// GetPositionsByDepartment endpoint
func (pc *PositionController) GetPositionsByDepartment(c *gin.Context) {
	departmentID := c.Param("departmentId")

	positions, err := pc.positionService.GetPositionsByDepartment(c, departmentID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve positions", err)
		return
	}

	c.JSON(http.StatusOK, positions)
}
