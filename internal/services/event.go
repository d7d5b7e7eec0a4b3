package services

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/cmsgraham/secret-santa/internal/email"
	"github.com/cmsgraham/secret-santa/internal/models"
	"github.com/cmsgraham/secret-santa/internal/names"

	"gorm.io/gorm"
)

// codeCharset deliberately omits 0/O and 1/I/l so codes survive being read
// aloud or written on paper.
const (
	codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength  = 8
)

// EventService owns the event lifecycle and every state-changing operation on
// it. Guards are authorization-independent; organizer checks happen before
// the guarded transition.
type EventService struct {
	db     *gorm.DB
	draw   *DrawService
	mailer email.Mailer
}

func NewEventService(db *gorm.DB, draw *DrawService, mailer email.Mailer) *EventService {
	return &EventService{db: db, draw: draw, mailer: mailer}
}

type CreateEventInput struct {
	Name                string
	Description         string
	MinParticipants     int
	MaxParticipants     int
	AllowSelfAssignment bool
}

func (s *EventService) CreateEvent(organizerID uint, in CreateEventInput) (*models.Event, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrValidation)
	}
	if in.MinParticipants <= 0 {
		in.MinParticipants = 3
	}
	if in.MaxParticipants <= 0 {
		in.MaxParticipants = 100
	}
	if in.MinParticipants > in.MaxParticipants {
		return nil, fmt.Errorf("%w: min participants exceeds max", ErrValidation)
	}

	event := models.Event{
		Code:                s.generateUniqueCode(),
		Name:                in.Name,
		Description:         in.Description,
		OrganizerID:         organizerID,
		Status:              models.EventStatusRegistrationOpen,
		AllowSelfAssignment: in.AllowSelfAssignment,
		MinParticipants:     in.MinParticipants,
		MaxParticipants:     in.MaxParticipants,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventByCode loads an event by its public code.
func (s *EventService) GetEventByCode(code string) (*models.Event, error) {
	var event models.Event
	if err := s.db.Where("code = ?", code).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, code)
		}
		return nil, err
	}
	return &event, nil
}

// GetManagedEvent loads an event and verifies the acting user organizes it.
func (s *EventService) GetManagedEvent(code string, userID uint) (*models.Event, error) {
	event, err := s.GetEventByCode(code)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != userID {
		return nil, ErrForbidden
	}
	return event, nil
}

type EventSummary struct {
	ID               uint       `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	ParticipantCount int        `json:"participant_count"`
	GuessingEnabled  bool       `json:"guessing_enabled"`
	DrawDate         *time.Time `json:"draw_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ListEvents returns the dashboard view for an organizer.
func (s *EventService) ListEvents(organizerID uint) ([]EventSummary, error) {
	var events []models.Event
	if err := s.db.Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	result := make([]EventSummary, len(events))
	for i, e := range events {
		var count int64
		s.db.Model(&models.Participant{}).Where("event_id = ?", e.ID).Count(&count)
		result[i] = EventSummary{
			ID:               e.ID,
			Code:             e.Code,
			Name:             e.Name,
			Status:           e.Status,
			ParticipantCount: int(count),
			GuessingEnabled:  e.GuessingEnabled,
			DrawDate:         e.DrawDate,
			CreatedAt:        e.CreatedAt,
		}
	}
	return result, nil
}

// RegisterParticipant signs a participant up while registration is open.
// A blank nickname gets a generated one.
func (s *EventService) RegisterParticipant(code, name, nickname, emailAddr string) (*models.Participant, error) {
	event, err := s.GetEventByCode(code)
	if err != nil {
		return nil, err
	}

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if nickname == "" {
		nickname = names.Nickname()
	}

	var participant models.Participant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-read inside the transaction: a draw may have committed since the
		// event was loaded, and a late registration must not slip past it.
		var current models.Event
		if err := tx.First(&current, event.ID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.Participant{}).
			Where("event_id = ?", event.ID).Count(&count).Error; err != nil {
			return err
		}
		if !current.IsOpen() {
			return fmt.Errorf("%w: registration is closed for this event", ErrStateGuard)
		}
		if !current.CanRegister(int(count)) {
			return fmt.Errorf("%w: event is full", ErrStateGuard)
		}

		var existing models.Participant
		if err := tx.Where("event_id = ? AND email = ?", event.ID, emailAddr).
			First(&existing).Error; err == nil {
			return fmt.Errorf("%w: this email is already registered for this event", ErrValidation)
		}

		participant = models.Participant{
			EventID:      event.ID,
			Name:         name,
			Nickname:     nickname,
			Email:        emailAddr,
			RegisteredAt: time.Now(),
		}
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// RemoveParticipant is organizer-only and permitted only while registration
// is open; once a draw ran the participant set is frozen.
func (s *EventService) RemoveParticipant(code string, participantID, userID uint) error {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return err
	}
	if !event.IsOpen() {
		return fmt.Errorf("%w: participants can only be removed while registration is open", ErrStateGuard)
	}

	res := s.db.Where("id = ? AND event_id = ?", participantID, event.ID).
		Delete(&models.Participant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: participant", ErrNotFound)
	}
	return nil
}

// ListParticipants returns the public participant list for an event.
func (s *EventService) ListParticipants(code string) (*models.Event, []models.Participant, error) {
	event, err := s.GetEventByCode(code)
	if err != nil {
		return nil, nil, err
	}
	var participants []models.Participant
	if err := s.db.Where("event_id = ?", event.ID).
		Order("registered_at ASC").
		Find(&participants).Error; err != nil {
		return nil, nil, err
	}
	return event, participants, nil
}

type DrawResult struct {
	AssignmentCount  int `json:"assignment_count"`
	ParticipantCount int `json:"participant_count"`
	EmailsSent       int `json:"emails_sent"`
}

// RunDraw computes and commits the assignment set. The status flip is a
// compare-and-swap on registration_open, so of two concurrent draws exactly
// one commits and the loser fails with a state guard error. Old assignments
// are replaced wholesale inside the same transaction; on any failure the
// event keeps its state and no partial assignments survive.
func (s *EventService) RunDraw(code string, userID uint) (*DrawResult, error) {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return nil, err
	}

	var participants []models.Participant
	var assignments []models.Assignment

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Event
		if err := tx.First(&current, event.ID).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).
			Order("registered_at ASC").
			Find(&participants).Error; err != nil {
			return err
		}

		if !current.IsOpen() {
			return fmt.Errorf("%w: draw already completed", ErrStateGuard)
		}
		if !current.CanRunDraw(len(participants)) {
			return fmt.Errorf("%w: need at least %d", ErrInsufficientParticipants, current.MinParticipants)
		}

		var err error
		assignments, err = s.draw.AssignReceivers(participants, current.AllowSelfAssignment)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Event{}).
			Where("id = ? AND status = ?", event.ID, models.EventStatusRegistrationOpen).
			Updates(map[string]interface{}{
				"status":    models.EventStatusDrawCompleted,
				"draw_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: draw already completed", ErrStateGuard)
		}

		if err := tx.Where("event_id = ?", event.ID).
			Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		for i := range assignments {
			assignments[i].EventID = event.ID
		}
		return tx.Create(&assignments).Error
	})
	if err != nil {
		return nil, err
	}

	emailsSent := s.sendAssignmentEmails(event, participants, assignments)

	return &DrawResult{
		AssignmentCount:  len(assignments),
		ParticipantCount: len(participants),
		EmailsSent:       emailsSent,
	}, nil
}

// sendAssignmentEmails notifies each giver after a committed draw. Delivery
// is best effort; failures are logged and counted, never rolled back.
func (s *EventService) sendAssignmentEmails(event *models.Event, participants []models.Participant, assignments []models.Assignment) int {
	byID := make(map[uint]models.Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	var organizer models.User
	s.db.First(&organizer, event.OrganizerID)

	sent := 0
	for _, a := range assignments {
		giver, receiver := byID[a.GiverID], byID[a.ReceiverID]
		subject, body := email.AssignmentMessage(giver.Name, receiver.Name, event.Name, organizer.Name)
		if err := s.mailer.Send(giver.Email, subject, body); err != nil {
			log.Printf("draw: assignment email to %s failed: %v", giver.Email, err)
			continue
		}
		now := time.Now()
		s.db.Model(&models.Participant{}).Where("id = ?", giver.ID).
			Updates(map[string]interface{}{
				"assignment_email_sent":    true,
				"assignment_email_sent_at": now,
			})
		sent++
	}
	return sent
}

// ReopenEvent returns a completed draw to open registration. The old
// assignments stay until the next draw replaces them.
func (s *EventService) ReopenEvent(code string, userID uint) error {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return err
	}
	if !event.CanReopen() {
		return fmt.Errorf("%w: only a completed draw can be reopened", ErrStateGuard)
	}
	return s.db.Model(event).Update("status", models.EventStatusRegistrationOpen).Error
}

// CloseEvent closes the event. Closing is terminal.
func (s *EventService) CloseEvent(code string, userID uint) error {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return err
	}
	if !event.CanClose() {
		return fmt.Errorf("%w: event is already closed", ErrStateGuard)
	}
	now := time.Now()
	return s.db.Model(event).Updates(map[string]interface{}{
		"status":    models.EventStatusClosed,
		"closed_at": now,
	}).Error
}

// DeleteEvent removes a closed event and everything attached to it.
func (s *EventService) DeleteEvent(code string, userID uint) error {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return err
	}
	if !event.CanDelete() {
		return fmt.Errorf("%w: only a closed event can be deleted", ErrStateGuard)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.FeedLike{}, &models.FeedComment{}, &models.FeedPost{},
			&models.Assignment{}, &models.Participant{},
		} {
			if err := tx.Where("event_id = ?", event.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(event).Error
	})
}

// SetGuessing toggles the guessing feature. Enabling requires a completed
// draw; disabling is always allowed.
func (s *EventService) SetGuessing(code string, userID uint, enabled bool) error {
	event, err := s.GetManagedEvent(code, userID)
	if err != nil {
		return err
	}
	if enabled && !event.CanEnableGuessing() {
		return fmt.Errorf("%w: guessing can only be enabled after the draw", ErrStateGuard)
	}
	return s.db.Model(event).Update("guessing_enabled", enabled).Error
}

// ReceiverFor returns who the given participant gives to, once a draw exists.
func (s *EventService) ReceiverFor(eventID, giverID uint) (*models.Participant, error) {
	var assignment models.Assignment
	err := s.db.Where("event_id = ? AND giver_id = ?", eventID, giverID).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: assignment", ErrNotFound)
		}
		return nil, err
	}
	var receiver models.Participant
	if err := s.db.First(&receiver, assignment.ReceiverID).Error; err != nil {
		return nil, err
	}
	return &receiver, nil
}

func (s *EventService) generateUniqueCode() string {
	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeCharset[rand.Intn(len(codeCharset))]
		}
		code := string(buf)
		var count int64
		s.db.Model(&models.Event{}).Where("code = ?", code).Count(&count)
		if count == 0 {
			return code
		}
	}
}
