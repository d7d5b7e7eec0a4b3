package handlers

import (
	"net/http"

	"github.com/cmsgraham/secret-santa/internal/names"
	"github.com/cmsgraham/secret-santa/internal/services"
	"github.com/cmsgraham/secret-santa/internal/ws"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService *services.EventService
	hub          *ws.Hub
}

func NewEventHandler(eventService *services.EventService, hub *ws.Hub) *EventHandler {
	return &EventHandler{eventService: eventService, hub: hub}
}

type CreateEventRequest struct {
	Name                string `json:"name" binding:"required,min=1,max=255" example:"Office Party 2026"`
	Description         string `json:"description" example:"Gift budget is $20"`
	MinParticipants     int    `json:"min_participants" example:"3"`
	MaxParticipants     int    `json:"max_participants" example:"100"`
	AllowSelfAssignment bool   `json:"allow_self_assignment" example:"false"`
}

type EventPublicResponse struct {
	Code             string `json:"code"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	Status           string `json:"status"`
	ParticipantCount int    `json:"participant_count"`
	GuessingEnabled  bool   `json:"guessing_enabled"`
}

type GuessingRequest struct {
	Enabled *bool `json:"enabled" binding:"required" example:"true"`
}

// Create godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateEventRequest true "Event data"
// @Success      201 {object} models.Event
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	event, err := h.eventService.CreateEvent(currentUserID(c), services.CreateEventInput{
		Name:                req.Name,
		Description:         req.Description,
		MinParticipants:     req.MinParticipants,
		MaxParticipants:     req.MaxParticipants,
		AllowSelfAssignment: req.AllowSelfAssignment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// List godoc
// @Summary      List the organizer's events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} services.EventSummary
// @Router       /api/v1/events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.ListEvents(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Get godoc
// @Summary      Public event summary
// @Tags         events
// @Produce      json
// @Param        code path string true "Event code"
// @Success      200 {object} EventPublicResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/events/{code} [get]
func (h *EventHandler) Get(c *gin.Context) {
	event, participants, err := h.eventService.ListParticipants(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, EventPublicResponse{
		Code:             event.Code,
		Name:             event.Name,
		Description:      event.Description,
		Status:           event.Status,
		ParticipantCount: len(participants),
		GuessingEnabled:  event.GuessingEnabled,
	})
}

// Manage godoc
// @Summary      Organizer view of an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Success      200 {object} models.Event
// @Failure      403 {object} ErrorResponse
// @Router       /api/v1/events/{code}/manage [get]
func (h *EventHandler) Manage(c *gin.Context) {
	event, err := h.eventService.GetManagedEvent(c.Param("code"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	_, participants, err := h.eventService.ListParticipants(event.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	event.Participants = participants

	c.JSON(http.StatusOK, event)
}

// RunDraw godoc
// @Summary      Run the Secret Santa draw
// @Description  Compute and commit giver→receiver assignments, then email givers
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Success      200 {object} services.DrawResult
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/draw [post]
func (h *EventHandler) RunDraw(c *gin.Context) {
	result, err := h.eventService.RunDraw(c.Param("code"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if event, err := h.eventService.GetEventByCode(c.Param("code")); err == nil {
		h.hub.Broadcast(event.ID, ws.WSMessage{Type: ws.MessageDrawCompleted, Data: result})
	}

	c.JSON(http.StatusOK, result)
}

// Reopen godoc
// @Summary      Reopen registration after a draw
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/reopen [post]
func (h *EventHandler) Reopen(c *gin.Context) {
	if err := h.eventService.ReopenEvent(c.Param("code"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "registration reopened"})
}

// Close godoc
// @Summary      Close an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/close [post]
func (h *EventHandler) Close(c *gin.Context) {
	if err := h.eventService.CloseEvent(c.Param("code"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "event closed"})
}

// Delete godoc
// @Summary      Delete a closed event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Param("code"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "event deleted"})
}

// SetGuessing godoc
// @Summary      Toggle the guessing feature
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Event code"
// @Param        request body GuessingRequest true "Desired state"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/guessing [post]
func (h *EventHandler) SetGuessing(c *gin.Context) {
	var req GuessingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.eventService.SetGuessing(c.Param("code"), currentUserID(c), *req.Enabled); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "guessing updated"})
}

// NameSuggestions godoc
// @Summary      Suggest event names
// @Tags         events
// @Produce      json
// @Success      200 {object} map[string][]string
// @Router       /api/v1/suggestions/names [get]
func (h *EventHandler) NameSuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suggestions": names.EventNameSuggestions(5)})
}
