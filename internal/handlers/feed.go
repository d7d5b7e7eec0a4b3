package handlers

import (
	"fmt"
	"net/http"

	"github.com/cmsgraham/secret-santa/internal/models"
	"github.com/cmsgraham/secret-santa/internal/services"
	"github.com/cmsgraham/secret-santa/internal/ws"

	"github.com/gin-gonic/gin"
)

// FeedHandler serves the member pages and the event wall. Every request
// re-resolves the acting participant from the candidate identity keys it
// carries; nothing identity-related is cached server side.
type FeedHandler struct {
	eventService *services.EventService
	feedService  *services.FeedService
	resolver     *services.IdentityResolver
	authService  *services.AuthService
	hub          *ws.Hub
}

func NewFeedHandler(eventService *services.EventService, feedService *services.FeedService,
	resolver *services.IdentityResolver, authService *services.AuthService, hub *ws.Hub) *FeedHandler {
	return &FeedHandler{
		eventService: eventService,
		feedService:  feedService,
		resolver:     resolver,
		authService:  authService,
		hub:          hub,
	}
}

type CreatePostRequest struct {
	Content string `json:"content" binding:"required,min=1" example:"Who wants cookies?"`
}

type AddCommentRequest struct {
	Target  string `json:"target" binding:"required" example:"hint:7"`
	Content string `json:"content" binding:"required,min=1" example:"I know who this is!"`
}

type LikeRequest struct {
	Target string `json:"target" binding:"required" example:"post:12"`
}

type GuessRequest struct {
	GuessedID uint `json:"guessed_id" binding:"required" example:"4"`
}

type UpdateProfileRequest struct {
	Hints           *string `json:"hints"`
	GiftPreferences *string `json:"gift_preferences"`
	ProfilePicture  *string `json:"profile_picture"`
}

type MemberPageResponse struct {
	Participant *models.Participant `json:"participant"`
	Receiver    *models.Participant `json:"receiver,omitempty"`
}

type LikeResponse struct {
	Target    string `json:"target"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// actor loads the event and resolves who is making the request.
func (h *FeedHandler) actor(c *gin.Context) (*models.Event, *models.Participant, error) {
	event, err := h.eventService.GetEventByCode(c.Param("code"))
	if err != nil {
		return nil, nil, err
	}
	keys := identityKeys(c, h.authService)
	participant, err := h.resolver.Resolve(event.ID, keys)
	if err != nil {
		return nil, nil, err
	}
	return event, participant, nil
}

// Me godoc
// @Summary      Member page
// @Description  The acting participant's profile, plus who they give to once drawn
// @Tags         members
// @Produce      json
// @Param        code path string true "Event code"
// @Param        X-Participant-ID header string false "Participant ID"
// @Param        X-Participant-Email header string false "Participant email"
// @Success      200 {object} MemberPageResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/me [get]
func (h *FeedHandler) Me(c *gin.Context) {
	event, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := MemberPageResponse{Participant: participant}
	if event.Status != models.EventStatusRegistrationOpen {
		if receiver, err := h.eventService.ReceiverFor(event.ID, participant.ID); err == nil {
			resp.Receiver = receiver
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe godoc
// @Summary      Update member profile
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200 {object} models.Participant
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/me [put]
func (h *FeedHandler) UpdateMe(c *gin.Context) {
	_, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.feedService.UpdateProfile(participant, services.ProfileUpdate{
		Hints:           req.Hints,
		GiftPreferences: req.GiftPreferences,
		ProfilePicture:  req.ProfilePicture,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Guess godoc
// @Summary      Guess your Secret Santa
// @Description  One guess per participant, immutable once made
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body GuessRequest true "Guess"
// @Success      200 {object} MessageResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/events/{code}/guess [post]
func (h *FeedHandler) Guess(c *gin.Context) {
	event, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req GuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.feedService.RecordGuess(event, participant, req.GuessedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "guess recorded"})
}

// Wall godoc
// @Summary      Event wall
// @Description  Posts plus hint and gift-idea cards with comments and likes
// @Tags         feed
// @Produce      json
// @Param        code path string true "Event code"
// @Success      200 {object} services.WallView
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/feed [get]
func (h *FeedHandler) Wall(c *gin.Context) {
	event, _, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	wall, err := h.feedService.Wall(event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wall)
}

// CreatePost godoc
// @Summary      Post to the wall
// @Tags         feed
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body CreatePostRequest true "Post content"
// @Success      201 {object} models.FeedPost
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/feed/posts [post]
func (h *FeedHandler) CreatePost(c *gin.Context) {
	event, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	post, err := h.feedService.CreatePost(event, participant, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(event.ID, ws.WSMessage{Type: ws.MessagePostCreated, Data: post})
	c.JSON(http.StatusCreated, post)
}

// AddComment godoc
// @Summary      Comment on a post or card
// @Tags         feed
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body AddCommentRequest true "Comment"
// @Success      201 {object} models.FeedComment
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/feed/comments [post]
func (h *FeedHandler) AddComment(c *gin.Context) {
	event, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ref, err := models.ParseTargetRef(req.Target)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}

	comment, err := h.feedService.AddComment(event, participant, ref, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.Broadcast(event.ID, ws.WSMessage{Type: ws.MessageCommentAdded, Data: comment})
	c.JSON(http.StatusCreated, comment)
}

// ToggleLike godoc
// @Summary      Like or unlike a post or card
// @Tags         feed
// @Accept       json
// @Produce      json
// @Param        code path string true "Event code"
// @Param        request body LikeRequest true "Target"
// @Success      200 {object} LikeResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/events/{code}/feed/likes [post]
func (h *FeedHandler) ToggleLike(c *gin.Context) {
	event, participant, err := h.actor(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ref, err := models.ParseTargetRef(req.Target)
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", services.ErrValidation, err))
		return
	}

	liked, count, err := h.feedService.ToggleLike(event, participant, ref)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := LikeResponse{Target: ref.String(), Liked: liked, LikeCount: count}
	h.hub.Broadcast(event.ID, ws.WSMessage{Type: ws.MessageLikeToggled, Data: resp})
	c.JSON(http.StatusOK, resp)
}
