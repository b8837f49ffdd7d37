package models

import (
	"time"
)

// PasswordHistory stores a single hashed credential a user has used before.
// Entries are append-only; the newest HistoryCount entries are retained and
// older ones are pruned after every successful change.
type PasswordHistory struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Password  string    `json:"-" gorm:"not null"` // Password is hashed
	User      User      `json:"-" gorm:"foreignKey:UserID"`
}
