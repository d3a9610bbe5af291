package handlers

import (
	"net/http"
	"strings"

	"gatepass-backend/internal/models"
	"gatepass-backend/internal/services"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type PassHandler struct {
	manager   *services.PassManager
	validator *validator.Validate
}

// CreatePassResponse returns the new pass and the view to switch to.
type CreatePassResponse struct {
	Pass *models.GatePass `json:"pass"`
	View models.View      `json:"view"`
}

func NewPassHandler(manager *services.PassManager) *PassHandler {
	return &PassHandler{
		manager:   manager,
		validator: validator.New(),
	}
}

// CreatePass submits a pass request. Anonymous callers must supply visitor details.
func (h *PassHandler) CreatePass(c *gin.Context) {
	actor, ok := actorFromContext(c, h.manager)
	if !ok {
		return
	}

	var req services.CreatePassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	pass, view, err := h.manager.RequestPass(c.Request.Context(), actor, &req)
	if err != nil {
		respondServiceError(c, "Failed to create gate pass", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Gate pass requested successfully", CreatePassResponse{
		Pass: pass,
		View: view,
	})
}

// GetPasses lists all passes, optionally filtered by ?status= and ?type=
func (h *PassHandler) GetPasses(c *gin.Context) {
	passes := h.manager.AllPasses()

	status := models.PassStatus(strings.ToUpper(c.Query("status")))
	passType := models.PassType(strings.ToUpper(c.Query("type")))
	if status != "" || passType != "" {
		filtered := []models.GatePass{}
		for _, p := range passes {
			if status != "" && p.Status != status {
				continue
			}
			if passType != "" && p.Type != passType {
				continue
			}
			filtered = append(filtered, p)
		}
		passes = filtered
	}

	utils.SuccessResponse(c, http.StatusOK, "Gate passes retrieved successfully", passes)
}

func (h *PassHandler) GetMyPasses(c *gin.Context) {
	actor, ok := requireActor(c, h.manager)
	if !ok {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Gate passes retrieved successfully", h.manager.MyPasses(actor))
}

func (h *PassHandler) GetPass(c *gin.Context) {
	actor, ok := requireActor(c, h.manager)
	if !ok {
		return
	}

	pass, err := h.manager.PassByID(actor, c.Param("id"))
	if err != nil {
		respondServiceError(c, "Failed to retrieve gate pass", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Gate pass retrieved successfully", pass)
}

// UpdateStatus moves a pass to a new status
func (h *PassHandler) UpdateStatus(c *gin.Context) {
	actor, ok := requireActor(c, h.manager)
	if !ok {
		return
	}

	var req services.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	pass, err := h.manager.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondServiceError(c, "Failed to update gate pass", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Gate pass updated successfully", pass)
}
