package models

import (
	"time"
)

// PasswordChange records when a user last changed their password to support
// the expiration policy. Exactly one row per user; when no row exists the
// account creation time stands in for the last change.
type PasswordChange struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	LastChanged time.Time `json:"last_changed" gorm:"index;not null"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User        User      `json:"-" gorm:"foreignKey:UserID"`
}
