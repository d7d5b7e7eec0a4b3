package services

import (
	"errors"
	"strings"

	"github.com/cmsgraham/secret-santa/internal/models"

	"gorm.io/gorm"
)

// IdentityKeys is the bag of candidate keys a request may carry. Any subset
// can be populated; zero values mean "not present".
type IdentityKeys struct {
	ParticipantID    uint
	ParticipantEmail string
	UserEmail        string
}

// ParticipantLookup abstracts the participant queries the resolver needs.
// Absent rows are reported as (nil, nil), not as errors.
type ParticipantLookup interface {
	ParticipantByID(id uint) (*models.Participant, error)
	ParticipantByEmail(eventID uint, email string) (*models.Participant, error)
}

// IdentityResolver recovers the acting participant for a target event from
// inconsistently-populated session keys. It must be called fresh on every
// request; nothing is cached here.
type IdentityResolver struct {
	lookup ParticipantLookup
}

func NewIdentityResolver(lookup ParticipantLookup) *IdentityResolver {
	return &IdentityResolver{lookup: lookup}
}

// Resolve tries the keys in fixed priority order: direct participant id,
// participant email, then user email. A key only resolves when the matched
// participant belongs to the target event; a direct-id hit from another event
// never leaks and the resolver falls through to the next key. Returns
// ErrIdentityUnresolved when nothing matches.
func (r *IdentityResolver) Resolve(eventID uint, keys IdentityKeys) (*models.Participant, error) {
	if keys.ParticipantID != 0 {
		p, err := r.lookup.ParticipantByID(keys.ParticipantID)
		if err != nil {
			return nil, err
		}
		if p != nil && p.EventID == eventID {
			return p, nil
		}
	}

	for _, addr := range []string{keys.ParticipantEmail, keys.UserEmail} {
		if addr == "" {
			continue
		}
		p, err := r.lookup.ParticipantByEmail(eventID, normalizeEmail(addr))
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}

	return nil, ErrIdentityUnresolved
}

func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

type gormParticipantLookup struct {
	db *gorm.DB
}

// NewGormParticipantLookup backs the resolver with the participants table.
func NewGormParticipantLookup(db *gorm.DB) ParticipantLookup {
	return &gormParticipantLookup{db: db}
}

func (l *gormParticipantLookup) ParticipantByID(id uint) (*models.Participant, error) {
	var p models.Participant
	if err := l.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (l *gormParticipantLookup) ParticipantByEmail(eventID uint, email string) (*models.Participant, error) {
	var p models.Participant
	err := l.db.Where("event_id = ? AND email = ?", eventID, email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
