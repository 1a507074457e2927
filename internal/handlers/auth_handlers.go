package handlers

import (
	"net/http"

	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req, "Login") {
		return
	}
	resp, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err, "Login", "Login failed.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreateUser registers a staff account. Admin only.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}
	user, err := h.authService.CreateUser(req)
	if err != nil {
		respondServiceError(c, err, "CreateUser", "Failed to create user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetCurrentUser returns the profile of the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUserProfile(actor.UserID)
	if err != nil {
		respondServiceError(c, err, "GetCurrentUser", "Failed to fetch user profile.")
		return
	}
	c.JSON(http.StatusOK, user)
}
