package handlers

import (
	"net/http"

	"github.com/cmsgraham/secret-santa/internal/models"
	"github.com/cmsgraham/secret-santa/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email" example:"santa@northpole.com"`
	Name  string `json:"name" binding:"max=255" example:"Nick"`
}

type AuthResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiIs..."`
	User  *models.User `json:"user"`
}

// Login godoc
// @Summary      Request a magic login link
// @Description  Create the user if needed and email a single-use login link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login data"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if _, err := h.authService.IssueLoginToken(req.Email, req.Name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for the login link!"})
}

// Verify godoc
// @Summary      Verify a magic login link
// @Description  Consume the single-use token and return a session JWT
// @Tags         auth
// @Produce      json
// @Param        token path string true "Login token"
// @Success      200 {object} AuthResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/auth/verify/{token} [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	user, err := h.authService.VerifyLoginToken(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
