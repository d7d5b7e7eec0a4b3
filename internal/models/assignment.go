package models

import "time"

// Assignment pairs one giver with one receiver. A completed draw stores
// exactly one assignment per participant, forming a permutation of the
// event's participant set.
type Assignment struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	EventID uint `gorm:"not null;index" json:"event_id"`

	GiverID    uint `gorm:"not null;index" json:"giver_id"`
	ReceiverID uint `gorm:"not null" json:"receiver_id"`

	Giver    Participant `gorm:"foreignKey:GiverID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver Participant `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
