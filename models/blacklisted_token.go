package models

import (
	"time"

	"gorm.io/gorm"
)

// BlacklistedToken holds tokens that may no longer authenticate requests.
// Tokens land here on logout and on password change, so a credential change
// invalidates every session issued against the old password.
type BlacklistedToken struct {
	gorm.Model
	Token     string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
