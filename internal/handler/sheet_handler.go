package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// SheetHandler handles sheet and module HTTP requests.
type SheetHandler struct {
	sheetService SheetServiceInterface
}

// NewSheetHandler creates a new sheet handler.
func NewSheetHandler(sheetService SheetServiceInterface) *SheetHandler {
	return &SheetHandler{sheetService: sheetService}
}

// List handles GET /sheets.
func (h *SheetHandler) List(c *gin.Context) {
	sheets, err := h.sheetService.List(c.Request.Context(), ActorID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SheetsResponse{Sheets: sheets})
}

// Create handles POST /sheets.
func (h *SheetHandler) Create(c *gin.Context) {
	var req CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	sheet, err := h.sheetService.Create(c.Request.Context(), ActorID(c), req.Name,
		domain.SheetType(req.Type), domain.AccessLevel(req.AccessLevel))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SheetResponse{Sheet: sheet})
}

// Get handles GET /sheets/:id.
func (h *SheetHandler) Get(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sheet, err := h.sheetService.Get(c.Request.Context(), ActorID(c), sheetID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SheetResponse{Sheet: sheet})
}

// Rename handles PATCH /sheets/:id.
func (h *SheetHandler) Rename(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req RenameSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	sheet, err := h.sheetService.Rename(c.Request.Context(), ActorID(c), sheetID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SheetResponse{Sheet: sheet})
}

// UpdateAccessLevel handles PUT /sheets/:id/access-level.
func (h *SheetHandler) UpdateAccessLevel(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AccessLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	sheet, err := h.sheetService.UpdateAccessLevel(c.Request.Context(), ActorID(c), sheetID, domain.AccessLevel(req.AccessLevel))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SheetResponse{Sheet: sheet})
}

// Delete handles DELETE /sheets/:id.
func (h *SheetHandler) Delete(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sheetService.Delete(c.Request.Context(), ActorID(c), sheetID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListModules handles GET /sheets/:id/modules.
func (h *SheetHandler) ListModules(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	modules, err := h.sheetService.ListModules(c.Request.Context(), ActorID(c), sheetID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModulesResponse{Modules: modules})
}

// CreateModule handles POST /sheets/:id/modules.
func (h *SheetHandler) CreateModule(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	module, err := h.sheetService.CreateModule(c.Request.Context(), ActorID(c), sheetID, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ModuleResponse{Module: module})
}

// Summary handles GET /sheets/:id/summary.
func (h *SheetHandler) Summary(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.sheetService.Summary(c.Request.Context(), ActorID(c), sheetID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}
