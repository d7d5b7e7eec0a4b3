package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmsgraham/secret-santa/internal/models"

	"gorm.io/gorm"
)

// FeedService runs the event wall: anonymous posts plus comments and likes on
// posts and on the synthetic hint / gift-idea cards. Every operation takes
// the acting participant already resolved by the IdentityResolver.
type FeedService struct {
	db *gorm.DB
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{db: db}
}

type PostView struct {
	models.FeedPost
	Target       string               `json:"target"`
	LikeCount    int                  `json:"like_count"`
	CommentCount int                  `json:"comment_count"`
	Comments     []models.FeedComment `json:"comments,omitempty"`
}

// CardView is a synthetic wall entry derived from a participant's profile.
type CardView struct {
	Target       string               `json:"target"`
	Kind         models.TargetKind    `json:"kind"`
	Nickname     string               `json:"nickname"`
	Content      string               `json:"content"`
	LikeCount    int                  `json:"like_count"`
	CommentCount int                  `json:"comment_count"`
	Comments     []models.FeedComment `json:"comments,omitempty"`
}

type WallView struct {
	Posts []PostView `json:"posts"`
	Cards []CardView `json:"cards"`
}

// Wall assembles the event's wall: real posts newest first, then hint and
// gift-idea cards for every participant that filled those fields in.
func (s *FeedService) Wall(event *models.Event) (*WallView, error) {
	var posts []models.FeedPost
	if err := s.db.Where("event_id = ?", event.ID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}

	view := &WallView{Posts: make([]PostView, len(posts))}
	for i, p := range posts {
		ref := models.TargetRef{Kind: models.TargetPost, ID: p.ID}
		likes, comments, err := s.engagement(event.ID, ref)
		if err != nil {
			return nil, err
		}
		view.Posts[i] = PostView{
			FeedPost:     p,
			Target:       ref.String(),
			LikeCount:    likes,
			CommentCount: len(comments),
			Comments:     comments,
		}
	}

	var participants []models.Participant
	if err := s.db.Where("event_id = ?", event.ID).
		Order("registered_at ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}

	for _, p := range participants {
		for _, card := range []struct {
			kind    models.TargetKind
			content string
		}{
			{models.TargetHint, p.Hints},
			{models.TargetIdea, p.GiftPreferences},
		} {
			if card.content == "" {
				continue
			}
			ref := models.TargetRef{Kind: card.kind, ID: p.ID}
			likes, comments, err := s.engagement(event.ID, ref)
			if err != nil {
				return nil, err
			}
			view.Cards = append(view.Cards, CardView{
				Target:       ref.String(),
				Kind:         card.kind,
				Nickname:     p.Nickname,
				Content:      card.content,
				LikeCount:    likes,
				CommentCount: len(comments),
				Comments:     comments,
			})
		}
	}

	return view, nil
}

func (s *FeedService) engagement(eventID uint, ref models.TargetRef) (int, []models.FeedComment, error) {
	var likeCount int64
	if err := s.db.Model(&models.FeedLike{}).
		Where("event_id = ? AND target = ?", eventID, ref.String()).
		Count(&likeCount).Error; err != nil {
		return 0, nil, err
	}
	var comments []models.FeedComment
	if err := s.db.Where("event_id = ? AND target = ?", eventID, ref.String()).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return 0, nil, err
	}
	return int(likeCount), comments, nil
}

// CreatePost publishes a wall post under the actor's nickname.
func (s *FeedService) CreatePost(event *models.Event, actor *models.Participant, content string) (*models.FeedPost, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: post content is required", ErrValidation)
	}
	post := models.FeedPost{
		EventID:       event.ID,
		ParticipantID: actor.ID,
		Nickname:      displayName(actor),
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// AddComment attaches a comment to any valid target in the event.
func (s *FeedService) AddComment(event *models.Event, actor *models.Participant, ref models.TargetRef, content string) (*models.FeedComment, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", ErrValidation)
	}
	if err := s.validateTarget(event.ID, ref); err != nil {
		return nil, err
	}
	comment := models.FeedComment{
		EventID:       event.ID,
		Target:        ref.String(),
		ParticipantID: actor.ID,
		Nickname:      displayName(actor),
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ToggleLike likes an unliked target and unlikes a liked one. Returns the
// resulting liked state and total like count.
func (s *FeedService) ToggleLike(event *models.Event, actor *models.Participant, ref models.TargetRef) (bool, int, error) {
	if err := s.validateTarget(event.ID, ref); err != nil {
		return false, 0, err
	}

	liked := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.FeedLike
		err := tx.Where("event_id = ? AND target = ? AND participant_id = ?",
			event.ID, ref.String(), actor.ID).First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.FeedLike{
				EventID:       event.ID,
				Target:        ref.String(),
				ParticipantID: actor.ID,
				CreatedAt:     time.Now(),
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, 0, err
	}

	var count int64
	if err := s.db.Model(&models.FeedLike{}).
		Where("event_id = ? AND target = ?", event.ID, ref.String()).
		Count(&count).Error; err != nil {
		return liked, 0, err
	}
	return liked, int(count), nil
}

// validateTarget makes sure the reference points at something real inside the
// same event before a comment or like is stored against it.
func (s *FeedService) validateTarget(eventID uint, ref models.TargetRef) error {
	if ref.IsSynthetic() {
		// Synthetic cards have no row of their own; they exist as long as the
		// participant they derive from does.
		var count int64
		s.db.Model(&models.Participant{}).
			Where("id = ? AND event_id = ?", ref.ID, eventID).Count(&count)
		if count == 0 {
			return fmt.Errorf("%w: participant", ErrNotFound)
		}
		return nil
	}
	if ref.Kind != models.TargetPost {
		return fmt.Errorf("%w: unknown target kind", ErrValidation)
	}
	var count int64
	s.db.Model(&models.FeedPost{}).
		Where("id = ? AND event_id = ?", ref.ID, eventID).Count(&count)
	if count == 0 {
		return fmt.Errorf("%w: post", ErrNotFound)
	}
	return nil
}

// RecordGuess stores the actor's one-time guess of their Secret Santa.
func (s *FeedService) RecordGuess(event *models.Event, actor *models.Participant, guessedID uint) error {
	if !event.GuessingEnabled {
		return fmt.Errorf("%w: guessing is not enabled for this event", ErrStateGuard)
	}
	if actor.HasGuessed() {
		return fmt.Errorf("%w: guess already recorded", ErrStateGuard)
	}
	if guessedID == actor.ID {
		return fmt.Errorf("%w: you cannot guess yourself", ErrValidation)
	}

	var guessed models.Participant
	if err := s.db.Where("id = ? AND event_id = ?", guessedID, event.ID).
		First(&guessed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: guessed participant", ErrNotFound)
		}
		return err
	}

	now := time.Now()
	// Guard against a concurrent first guess: only an unset guess is written.
	res := s.db.Model(&models.Participant{}).
		Where("id = ? AND guessed_santa_id IS NULL", actor.ID).
		Updates(map[string]interface{}{
			"guessed_santa_id": guessedID,
			"guessed_at":       now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: guess already recorded", ErrStateGuard)
	}
	return nil
}

type ProfileUpdate struct {
	Hints           *string
	GiftPreferences *string
	ProfilePicture  *string
}

// UpdateProfile changes the actor's member page fields. Nil fields are left
// untouched.
func (s *FeedService) UpdateProfile(actor *models.Participant, update ProfileUpdate) (*models.Participant, error) {
	changes := map[string]interface{}{}
	if update.Hints != nil {
		changes["hints"] = *update.Hints
	}
	if update.GiftPreferences != nil {
		changes["gift_preferences"] = *update.GiftPreferences
	}
	if update.ProfilePicture != nil {
		changes["profile_picture"] = *update.ProfilePicture
	}
	if len(changes) == 0 {
		return actor, nil
	}
	if err := s.db.Model(actor).Updates(changes).Error; err != nil {
		return nil, err
	}
	return actor, nil
}

func displayName(p *models.Participant) string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}
