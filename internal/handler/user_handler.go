package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user-related HTTP requests.
type UserHandler struct {
	userService UserServiceInterface
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register handles POST /users.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{User: user})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), ActorID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

// Search handles GET /users/search.
func (h *UserHandler) Search(c *gin.Context) {
	var q SearchUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, "q parameter is required")
		return
	}

	users, err := h.userService.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, UsersResponse{Users: users})
}
