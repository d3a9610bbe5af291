package handlers

import (
	"fmt"
	"net/http"

	"gatepass-backend/internal/services"
	"gatepass-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	manager *services.PassManager
}

func NewReportHandler(manager *services.PassManager) *ReportHandler {
	return &ReportHandler{manager: manager}
}

func (h *ReportHandler) GetVisitors(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Visitor report retrieved successfully", h.manager.VisitorReport())
}

func (h *ReportHandler) GetHistory(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "History retrieved successfully", h.manager.History())
}

// ExportHistory streams the history workbook as an attachment
func (h *ReportHandler) ExportHistory(c *gin.Context) {
	buf, filename, err := h.manager.ExportHistory(c.Request.Context())
	if err != nil {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to export history", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
