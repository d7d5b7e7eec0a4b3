package models

import "time"

type Participant struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EventID uint `gorm:"not null;index;uniqueIndex:idx_event_email" json:"event_id"`

	Name            string `gorm:"size:255;not null" json:"name"`
	Nickname        string `gorm:"size:255" json:"nickname,omitempty"`
	Email           string `gorm:"size:255;not null;uniqueIndex:idx_event_email" json:"email"`
	Hints           string `gorm:"type:text" json:"hints,omitempty"`
	GiftPreferences string `gorm:"type:text" json:"gift_preferences,omitempty"`
	ProfilePicture  string `gorm:"size:500" json:"profile_picture,omitempty"`

	// Guess of who their Secret Santa is. Set once, immutable afterwards.
	GuessedSantaID *uint      `json:"guessed_santa_id,omitempty"`
	GuessedAt      *time.Time `json:"guessed_at,omitempty"`

	AssignmentEmailSent   bool       `gorm:"not null;default:false" json:"assignment_email_sent"`
	AssignmentEmailSentAt *time.Time `json:"assignment_email_sent_at,omitempty"`

	RegisteredAt time.Time `json:"registered_at"`
}

// HasGuessed reports whether the participant already used their single guess.
func (p *Participant) HasGuessed() bool {
	return p.GuessedSantaID != nil
}
