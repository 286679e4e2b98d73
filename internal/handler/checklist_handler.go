package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
	"github.com/mishasvintus/bugcake/internal/service"
)

// ChecklistHandler handles checklist HTTP requests.
type ChecklistHandler struct {
	checklistService ChecklistServiceInterface
}

// NewChecklistHandler creates a new checklist handler.
func NewChecklistHandler(checklistService ChecklistServiceInterface) *ChecklistHandler {
	return &ChecklistHandler{checklistService: checklistService}
}

// Create handles POST /sheets/:id/checklists.
func (h *ChecklistHandler) Create(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CreateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	goalDate, err := time.Parse(time.DateOnly, req.GoalDate)
	if err != nil {
		BadRequest(c, "goal_date must be YYYY-MM-DD")
		return
	}

	checklist, err := h.checklistService.Create(c.Request.Context(), ActorID(c), service.CreateChecklistInput{
		SheetID:     sheetID,
		Name:        req.Name,
		GoalDate:    goalDate,
		AccessLevel: domain.AccessLevel(req.AccessLevel),
		TestCaseIDs: req.TestCaseIDs,
		ExecutorIDs: req.ExecutorIDs,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ChecklistResponse{Checklist: checklist})
}

// List handles GET /checklists.
func (h *ChecklistHandler) List(c *gin.Context) {
	checklists, err := h.checklistService.List(c.Request.Context(), ActorID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChecklistsResponse{Checklists: checklists})
}

// Get handles GET /checklists/:id.
func (h *ChecklistHandler) Get(c *gin.Context) {
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}

	checklist, err := h.checklistService.Get(c.Request.Context(), ActorID(c), checklistID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChecklistResponse{Checklist: checklist})
}

// UpdateItem handles PATCH /checklists/:id/items/:item_id.
func (h *ChecklistHandler) UpdateItem(c *gin.Context) {
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var req UpdateChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	item, err := h.checklistService.UpdateItem(c.Request.Context(), ActorID(c), checklistID, itemID,
		domain.ExecutionStatus(req.ExecutionStatus), req.ActualResults)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChecklistItemResponse{Item: item})
}

// UpdateAccessLevel handles PUT /checklists/:id/access-level.
func (h *ChecklistHandler) UpdateAccessLevel(c *gin.Context) {
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AccessLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	checklist, err := h.checklistService.UpdateAccessLevel(c.Request.Context(), ActorID(c), checklistID,
		domain.AccessLevel(req.AccessLevel))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChecklistResponse{Checklist: checklist})
}

// Delete handles DELETE /checklists/:id.
func (h *ChecklistHandler) Delete(c *gin.Context) {
	checklistID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.checklistService.Delete(c.Request.Context(), ActorID(c), checklistID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
