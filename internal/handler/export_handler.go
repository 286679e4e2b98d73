package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExportHandler handles spreadsheet export requests.
type ExportHandler struct {
	exportService ExportServiceInterface
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exportService ExportServiceInterface) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportSheet handles POST /sheets/:id/export.
func (h *ExportHandler) ExportSheet(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	updated, err := h.exportService.ExportSheet(c.Request.Context(), ActorID(c), sheetID, req.SpreadsheetID, req.Tab)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{UpdatedRange: updated})
}

// ExportChecklist handles POST /checklists/:id/export.
func (h *ExportHandler) ExportChecklist(c *gin.Context) {
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	updated, err := h.exportService.ExportChecklist(c.Request.Context(), ActorID(c), checklistID, req.SpreadsheetID, req.Tab)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{UpdatedRange: updated})
}
