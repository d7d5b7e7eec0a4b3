package services

import (
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/cmsgraham/secret-santa/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Event{}, &models.Participant{}, &models.Assignment{},
		&models.AuthToken{}, &models.FeedPost{}, &models.FeedComment{}, &models.FeedLike{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newTestEventService(t *testing.T, db *gorm.DB) *EventService {
	t.Helper()
	return NewEventService(db, NewDrawServiceWithSource(rand.NewSource(1)), &recordingMailer{})
}

func createTestEvent(t *testing.T, db *gorm.DB, svc *EventService, in CreateEventInput) (*models.Event, uint) {
	t.Helper()
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	organizer := models.User{Email: fmt.Sprintf("organizer%d@example.com", userCount), Name: "Org"}
	if err := db.Create(&organizer).Error; err != nil {
		t.Fatalf("create organizer: %v", err)
	}
	event, err := svc.CreateEvent(organizer.ID, in)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event, organizer.ID
}

func registerN(t *testing.T, svc *EventService, code string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("guest%d@example.com", i)
		if _, err := svc.RegisterParticipant(code, fmt.Sprintf("Guest %d", i), "", email); err != nil {
			t.Fatalf("register %s: %v", email, err)
		}
	}
}

func TestEventService_RunDraw(t *testing.T) {
	t.Run("assigns every participant exactly once", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 4)

		result, err := svc.RunDraw(event.Code, organizerID)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if result.AssignmentCount != 4 || result.ParticipantCount != 4 {
			t.Errorf("unexpected result %+v", result)
		}
		if result.EmailsSent != 4 {
			t.Errorf("expected 4 assignment emails, got %d", result.EmailsSent)
		}

		var assignments []models.Assignment
		if err := db.Where("event_id = ?", event.ID).Find(&assignments).Error; err != nil {
			t.Fatalf("load assignments: %v", err)
		}
		givers, receivers := map[uint]bool{}, map[uint]bool{}
		for _, a := range assignments {
			if a.GiverID == a.ReceiverID {
				t.Errorf("participant %d assigned to themselves", a.GiverID)
			}
			givers[a.GiverID] = true
			receivers[a.ReceiverID] = true
		}
		if len(givers) != 4 || len(receivers) != 4 {
			t.Errorf("not a permutation: %d givers, %d receivers", len(givers), len(receivers))
		}
	})

	t.Run("second draw fails with a state guard", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 3)

		if _, err := svc.RunDraw(event.Code, organizerID); err != nil {
			t.Fatalf("first draw failed: %v", err)
		}
		if _, err := svc.RunDraw(event.Code, organizerID); !errors.Is(err, ErrStateGuard) {
			t.Fatalf("expected ErrStateGuard, got %v", err)
		}
	})

	t.Run("reopen and redraw replaces all prior assignments", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 3)

		if _, err := svc.RunDraw(event.Code, organizerID); err != nil {
			t.Fatalf("first draw failed: %v", err)
		}
		var oldIDs []uint
		if err := db.Model(&models.Assignment{}).Where("event_id = ?", event.ID).
			Pluck("id", &oldIDs).Error; err != nil {
			t.Fatalf("load old assignments: %v", err)
		}

		if err := svc.ReopenEvent(event.Code, organizerID); err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		if _, err := svc.RegisterParticipant(event.Code, "Late Guest", "", "late@example.com"); err != nil {
			t.Fatalf("register after reopen failed: %v", err)
		}

		result, err := svc.RunDraw(event.Code, organizerID)
		if err != nil {
			t.Fatalf("second draw failed: %v", err)
		}
		if result.AssignmentCount != 4 {
			t.Errorf("expected 4 assignments after redraw, got %d", result.AssignmentCount)
		}

		var total, survivors int64
		db.Model(&models.Assignment{}).Where("event_id = ?", event.ID).Count(&total)
		db.Model(&models.Assignment{}).Where("id IN ?", oldIDs).Count(&survivors)
		if total != 4 {
			t.Errorf("expected exactly 4 assignment rows, got %d", total)
		}
		if survivors != 0 {
			t.Errorf("%d assignments from the first draw survived the redraw", survivors)
		}
	})

	t.Run("too few participants", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 2)

		if _, err := svc.RunDraw(event.Code, organizerID); !errors.Is(err, ErrInsufficientParticipants) {
			t.Fatalf("expected ErrInsufficientParticipants, got %v", err)
		}
	})

	t.Run("only the organizer may draw", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 3)

		if _, err := svc.RunDraw(event.Code, organizerID+1); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestEventService_RegisterParticipant(t *testing.T) {
	t.Run("closed once the draw has run", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, organizerID := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})
		registerN(t, svc, event.Code, 3)

		if _, err := svc.RunDraw(event.Code, organizerID); err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if _, err := svc.RegisterParticipant(event.Code, "Late", "", "late@example.com"); !errors.Is(err, ErrStateGuard) {
			t.Fatalf("expected ErrStateGuard, got %v", err)
		}

		// Participants and assignments must stay in lockstep.
		var participants, assignments int64
		db.Model(&models.Participant{}).Where("event_id = ?", event.ID).Count(&participants)
		db.Model(&models.Assignment{}).Where("event_id = ?", event.ID).Count(&assignments)
		if participants != assignments {
			t.Errorf("%d participants but %d assignments", participants, assignments)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, _ := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})

		if _, err := svc.RegisterParticipant(event.Code, "Alice", "", "alice@example.com"); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}
		if _, err := svc.RegisterParticipant(event.Code, "Alice Again", "", "Alice@Example.com"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("rejects registration when full", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, _ := createTestEvent(t, db, svc, CreateEventInput{
			Name:            "Small Exchange",
			MinParticipants: 3,
			MaxParticipants: 3,
		})
		registerN(t, svc, event.Code, 3)

		if _, err := svc.RegisterParticipant(event.Code, "Fourth", "", "fourth@example.com"); !errors.Is(err, ErrStateGuard) {
			t.Fatalf("expected ErrStateGuard, got %v", err)
		}
	})

	t.Run("blank nickname gets a generated one", func(t *testing.T) {
		db := openTestDB(t)
		svc := newTestEventService(t, db)
		event, _ := createTestEvent(t, db, svc, CreateEventInput{Name: "Office Exchange"})

		p, err := svc.RegisterParticipant(event.Code, "Alice", "", "alice@example.com")
		if err != nil {
			t.Fatalf("registration failed: %v", err)
		}
		if p.Nickname == "" {
			t.Error("expected a generated nickname")
		}
	})
}
