package models

import "time"

// AuthToken is a single-use magic link token for passwordless login.
type AuthToken struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	Token  string `gorm:"size:255;uniqueIndex;not null" json:"-"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// IsValid reports whether the token is unused and unexpired at the given time.
func (t *AuthToken) IsValid(now time.Time) bool {
	if t.Used {
		return false
	}
	return now.UTC().Before(asUTC(t.ExpiresAt))
}

// asUTC reinterprets a timestamp that lost its zone on the way through the
// database as UTC wall-clock time.
func asUTC(ts time.Time) time.Time {
	if ts.Location() == time.UTC {
		return ts
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}
