package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// TestCaseHandler handles test case HTTP requests.
type TestCaseHandler struct {
	testCaseService TestCaseServiceInterface
}

// NewTestCaseHandler creates a new test case handler.
func NewTestCaseHandler(testCaseService TestCaseServiceInterface) *TestCaseHandler {
	return &TestCaseHandler{testCaseService: testCaseService}
}

// List handles GET /sheets/:id/test-cases.
func (h *TestCaseHandler) List(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var q TestCaseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, "invalid filter")
		return
	}

	var filter domain.TestCaseFilter
	if q.Status != "" {
		status := domain.WorkflowStatus(q.Status)
		filter.Status = &status
	}
	if q.ModuleID != "" {
		filter.ModuleID = &q.ModuleID
	}

	testCases, err := h.testCaseService.List(c.Request.Context(), ActorID(c), sheetID, filter)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TestCasesResponse{TestCases: testCases})
}

// Create handles POST /sheets/:id/test-cases.
func (h *TestCaseHandler) Create(c *gin.Context) {
	sheetID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	tc, err := h.testCaseService.Create(c.Request.Context(), ActorID(c), sheetID, req.input())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, TestCaseResponse{TestCase: tc})
}

// Get handles GET /test-cases/:id.
func (h *TestCaseHandler) Get(c *gin.Context) {
	testCaseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tc, err := h.testCaseService.Get(c.Request.Context(), ActorID(c), testCaseID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TestCaseResponse{TestCase: tc})
}

// Update handles PATCH /test-cases/:id.
func (h *TestCaseHandler) Update(c *gin.Context) {
	testCaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TestCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	tc, err := h.testCaseService.Update(c.Request.Context(), ActorID(c), testCaseID, req.input())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TestCaseResponse{TestCase: tc})
}

// Delete handles DELETE /test-cases/:id.
func (h *TestCaseHandler) Delete(c *gin.Context) {
	testCaseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.testCaseService.Delete(c.Request.Context(), ActorID(c), testCaseID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyAction handles POST /test-cases/:id/actions.
func (h *TestCaseHandler) ApplyAction(c *gin.Context) {
	testCaseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req WorkflowActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	tc, err := h.testCaseService.ApplyAction(c.Request.Context(), ActorID(c), testCaseID,
		domain.WorkflowAction(req.Action), req.Note)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, TestCaseResponse{TestCase: tc})
}

// History handles GET /test-cases/:id/history.
func (h *TestCaseHandler) History(c *gin.Context) {
	testCaseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	history, err := h.testCaseService.History(c.Request.Context(), ActorID(c), testCaseID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{History: history})
}

func (r *TestCaseRequest) input() domain.TestCaseInput {
	return domain.TestCaseInput{
		ModuleID: r.ModuleID,
		Title:    r.Title,
		Details:  r.Details,
	}
}
