package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mishasvintus/bugcake/internal/domain"
)

// MemberHandler handles sharing of sheets and checklists. Each method returns a
// handler bound to one resource type.
type MemberHandler struct {
	memberService MemberServiceInterface
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(memberService MemberServiceInterface) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

func resourceRef(c *gin.Context, t domain.ResourceType) (domain.ResourceRef, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return domain.ResourceRef{}, false
	}
	return domain.ResourceRef{Type: t, ID: id}, true
}

// List handles GET /{sheets|checklists}/:id/members.
func (h *MemberHandler) List(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}

		members, err := h.memberService.List(c.Request.Context(), ActorID(c), ref)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, MembersResponse{Members: members})
	}
}

// Add handles POST /{sheets|checklists}/:id/members.
func (h *MemberHandler) Add(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}
		var req AddMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body")
			return
		}

		m, err := h.memberService.Add(c.Request.Context(), ActorID(c), ref, req.Email, domain.Role(req.Role))
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, MemberResponse{Member: m})
	}
}

// UpdateRole handles PATCH /{sheets|checklists}/:id/members/:user_id.
func (h *MemberHandler) UpdateRole(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}
		userID, ok := pathID(c, "user_id")
		if !ok {
			return
		}
		var req UpdateMemberRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body")
			return
		}

		m, err := h.memberService.UpdateRole(c.Request.Context(), ActorID(c), ref, userID, domain.Role(req.Role))
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, MemberResponse{Member: m})
	}
}

// Remove handles DELETE /{sheets|checklists}/:id/members/:user_id.
func (h *MemberHandler) Remove(t domain.ResourceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := resourceRef(c, t)
		if !ok {
			return
		}
		userID, ok := pathID(c, "user_id")
		if !ok {
			return
		}

		if err := h.memberService.Remove(c.Request.Context(), ActorID(c), ref, userID); err != nil {
			handleError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
