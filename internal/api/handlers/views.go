package handlers

import (
	"net/http"

	"gatepass-backend/internal/models"
	"gatepass-backend/internal/services"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ViewHandler struct {
	manager *services.PassManager
}

func NewViewHandler(manager *services.PassManager) *ViewHandler {
	return &ViewHandler{manager: manager}
}

// GetView returns the data behind a named screen, subject to the caller's role.
func (h *ViewHandler) GetView(c *gin.Context) {
	actor, ok := requireActor(c, h.manager)
	if !ok {
		return
	}

	data, err := h.manager.View(actor, models.View(c.Param("view")))
	if err != nil {
		respondServiceError(c, "Failed to load view", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "View retrieved successfully", data)
}

func (h *ViewHandler) GetUsers(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", h.manager.Users())
}
