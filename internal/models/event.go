package models

import "time"

type Event struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Code        string `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	OrganizerID uint `gorm:"not null;index" json:"organizer_id"`
	Organizer   User `gorm:"foreignKey:OrganizerID;constraint:OnDelete:CASCADE" json:"-"`

	Status   string     `gorm:"size:20;not null;default:'registration_open'" json:"status"`
	DrawDate *time.Time `json:"draw_date,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	AllowSelfAssignment bool `gorm:"not null;default:false" json:"allow_self_assignment"`
	MinParticipants     int  `gorm:"not null;default:3" json:"min_participants"`
	MaxParticipants     int  `gorm:"not null;default:100" json:"max_participants"`
	GuessingEnabled     bool `gorm:"not null;default:false" json:"guessing_enabled"`

	Participants []Participant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
	Assignments  []Assignment  `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
}

const (
	EventStatusRegistrationOpen = "registration_open"
	EventStatusDrawCompleted    = "draw_completed"
	EventStatusClosed           = "event_closed"
)

// IsOpen reports whether the event still accepts registrations.
func (e *Event) IsOpen() bool {
	return e.Status == EventStatusRegistrationOpen
}

// CanRegister checks the registration guard against the current participant count.
func (e *Event) CanRegister(participantCount int) bool {
	return e.Status == EventStatusRegistrationOpen && participantCount < e.MaxParticipants
}

// CanRunDraw checks the draw guard: registration must be open and enough
// participants must have signed up.
func (e *Event) CanRunDraw(participantCount int) bool {
	return e.Status == EventStatusRegistrationOpen && participantCount >= e.MinParticipants
}

// CanReopen reports whether registration can be reopened. Only a completed
// draw can be reopened; a closed event stays closed.
func (e *Event) CanReopen() bool {
	return e.Status == EventStatusDrawCompleted
}

// CanClose reports whether the event can be closed. Closing is terminal.
func (e *Event) CanClose() bool {
	return e.Status != EventStatusClosed
}

// CanDelete reports whether the event can be deleted. Only closed events may go.
func (e *Event) CanDelete() bool {
	return e.Status == EventStatusClosed
}

// CanEnableGuessing allows turning guessing on only once the draw has run.
// Disabling is always allowed.
func (e *Event) CanEnableGuessing() bool {
	return e.Status == EventStatusDrawCompleted || e.GuessingEnabled
}
