package models

import "time"

// FeedPost is a message on the event's anonymous wall. Posts display the
// author's nickname, never their real name.
type FeedPost struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	EventID       uint `gorm:"not null;index" json:"event_id"`
	ParticipantID uint `gorm:"not null;index" json:"participant_id"`

	Nickname  string    `gorm:"size:255;not null" json:"nickname"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedComment attaches to a TargetRef, so comments work on real posts and on
// the synthetic hint/idea cards alike.
type FeedComment struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	EventID       uint   `gorm:"not null;index" json:"event_id"`
	Target        string `gorm:"size:100;not null;index" json:"target"`
	ParticipantID uint   `gorm:"not null;index" json:"participant_id"`

	Nickname  string    `gorm:"size:255;not null" json:"nickname"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedLike records one like per participant per target.
type FeedLike struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	EventID       uint   `gorm:"not null;index" json:"event_id"`
	Target        string `gorm:"size:100;not null;uniqueIndex:idx_like_unique" json:"target"`
	ParticipantID uint   `gorm:"not null;uniqueIndex:idx_like_unique" json:"participant_id"`

	CreatedAt time.Time `json:"created_at"`
}
