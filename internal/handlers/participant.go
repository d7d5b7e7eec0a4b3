package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cmsgraham/secret-santa/internal/services"
	"github.com/cmsgraham/secret-santa/internal/ws"

	"github.com/gin-gonic/gin"
)

type ParticipantHandler struct {
	eventService *services.EventService
	hub          *ws.Hub
}

func NewParticipantHandler(eventService *services.EventService, hub *ws.Hub) *ParticipantHandler {
	return &ParticipantHandler{eventService: eventService, hub: hub}
}

type RegisterParticipantRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=255" example:"Alice"`
	Nickname string `json:"nickname" binding:"max=255" example:"Jolly Snowflake"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
}

type ParticipantListEntry struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Nickname     string `json:"nickname,omitempty"`
	RegisteredAt string `json:"registered_at"`
}

// Register godoc
// @Summary      Register for an event
// @Description  Public signup while registration is open
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body RegisterParticipantRequest true "Registration data"
// @Success      201 {object} models.Participant
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/participants [post]
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	participant, err := h.eventService.RegisterParticipant(c.Param("code"), req.Name, req.Nickname, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(participant.EventID, ws.WSMessage{
		Type: ws.MessageParticipantRegistered,
		Data: gin.H{"id": participant.ID, "name": participant.Name, "nickname": participant.Nickname},
	})

	c.JSON(http.StatusCreated, participant)
}

// Remove godoc
// @Summary      Remove a participant
// @Description  Organizer-only; allowed only while registration is open
// @Tags         participants
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Param        id path int true "Participant ID"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/participants/{id} [delete]
func (h *ParticipantHandler) Remove(c *gin.Context) {
	participantID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid participant id"})
		return
	}

	if err := h.eventService.RemoveParticipant(c.Param("code"), uint(participantID), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "participant removed"})
}

// List godoc
// @Summary      List event participants
// @Tags         participants
// @Produce      json
// @Param        code path string true "Event code"
// @Success      200 {array} ParticipantListEntry
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/events/{code}/participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	_, participants, err := h.eventService.ListParticipants(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]ParticipantListEntry, len(participants))
	for i, p := range participants {
		entries[i] = ParticipantListEntry{
			ID:           p.ID,
			Name:         p.Name,
			Nickname:     p.Nickname,
			RegisteredAt: p.RegisteredAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, entries)
}
