package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// AccessRequestHandler handles access request HTTP requests.
type AccessRequestHandler struct {
	requestService AccessRequestServiceInterface
}

// NewAccessRequestHandler creates a new access request handler.
func NewAccessRequestHandler(requestService AccessRequestServiceInterface) *AccessRequestHandler {
	return &AccessRequestHandler{requestService: requestService}
}

// Create handles POST /{sheets|checklists}/:id/access-requests.
func (h *AccessRequestHandler) Create(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}
		var req AccessRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body")
			return
		}

		r, err := h.requestService.Request(c.Request.Context(), ActorID(c), ref, domain.Role(req.Role), req.Message)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, AccessRequestResponse{Request: r})
	}
}

// ListPending handles GET /{sheets|checklists}/:id/access-requests.
func (h *AccessRequestHandler) ListPending(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}

		requests, err := h.requestService.ListPending(c.Request.Context(), ActorID(c), ref)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, AccessRequestsResponse{Requests: requests})
	}
}

// Approve handles POST /access-requests/:id/approve. The body may override the granted role.
func (h *AccessRequestHandler) Approve(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var role *domain.Role
	if c.Request.ContentLength > 0 {
		var req ApproveAccessRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body")
			return
		}
		if req.Role != "" {
			r := domain.Role(req.Role)
			role = &r
		}
	}

	r, err := h.requestService.Approve(c.Request.Context(), ActorID(c), requestID, role)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccessRequestResponse{Request: r})
}

// Decline handles POST /access-requests/:id/decline.
func (h *AccessRequestHandler) Decline(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	r, err := h.requestService.Decline(c.Request.Context(), ActorID(c), requestID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, AccessRequestResponse{Request: r})
}
