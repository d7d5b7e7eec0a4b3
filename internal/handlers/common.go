package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cmsgraham/secret-santa/internal/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// respondError maps the service error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientParticipants),
		errors.Is(err, services.ErrAssignmentUnsatisfiable):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrStateGuard):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrAuthInvalid),
		errors.Is(err, services.ErrIdentityUnresolved):
		status = http.StatusUnauthorized
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// currentUserID reads the user id set by the JWT middleware.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// identityKeys assembles the candidate identity keys a request carries: the
// participant headers set by the frontend plus the logged-in user's email
// when a valid bearer token was presented.
func identityKeys(c *gin.Context, authService *services.AuthService) services.IdentityKeys {
	keys := services.IdentityKeys{
		ParticipantEmail: c.GetHeader("X-Participant-Email"),
	}
	if idStr := c.GetHeader("X-Participant-ID"); idStr != "" {
		if id, err := strconv.ParseUint(idStr, 10, 32); err == nil {
			keys.ParticipantID = uint(id)
		}
	}
	if userID := currentUserID(c); userID != 0 {
		if user, err := authService.GetUser(userID); err == nil {
			keys.UserEmail = user.Email
		}
	}
	return keys
}
