package utils

import (
	"errors"
	"time"

	"github.com/Nikhil-836/PassRotate/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RecordPassword appends a hashed credential to the user's password history.
// Entries are never overwritten; eviction happens separately via PruneHistory.
func RecordPassword(db *gorm.DB, userID uint, hashedPassword string, at time.Time) error {
	entry := models.PasswordHistory{
		UserID:    userID,
		Password:  hashedPassword,
		CreatedAt: at,
	}
	return db.Create(&entry).Error
}

// PruneHistory keeps the `keep` most recent history entries for a user and
// deletes everything at or below the cutoff timestamp. Entries that share the
// cutoff timestamp are deleted together, which can retain fewer than `keep`
// entries under timestamp collisions. Idempotent and safe to run concurrently:
// every run deletes the same region below the Nth-newest boundary.
func PruneHistory(db *gorm.DB, userID uint, keep int) error {
	var boundary models.PasswordHistory
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(keep).
		First(&boundary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return db.Where("user_id = ? AND created_at <= ?", userID, boundary.CreatedAt).
		Delete(&models.PasswordHistory{}).Error
}

// HistoryContains reports whether rawPassword matches the user's current
// credential or any of the `depth` most recent history entries. The scan
// short-circuits on the first match. Verification errors other than a plain
// mismatch are returned so callers reject the candidate instead of treating a
// corrupt stored hash as unused.
func HistoryContains(db *gorm.DB, user *models.User, rawPassword string, depth int) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(rawPassword))
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, err
	}

	var entries []models.PasswordHistory
	if err := db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(depth).
		Find(&entries).Error; err != nil {
		return false, err
	}

	for _, entry := range entries {
		err := bcrypt.CompareHashAndPassword([]byte(entry.Password), []byte(rawPassword))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, err
		}
	}
	return false, nil
}
