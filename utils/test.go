package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB points config.DB at a fresh in-memory database for the duration
// of a test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive across queries.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	previous := config.DB
	config.DB = db
	t.Cleanup(func() {
		config.DB = previous
		sqlDB.Close()
	})
	return db
}

// SetupTestConfig installs a rotation policy configuration for tests.
func SetupTestConfig(t *testing.T, rotateAfter, warnAfter time.Duration, historyCount, maxRatio int) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-jwt-secret",
		SessionSecret:      "test-session-secret",
		RotateAfter:        rotateAfter,
		WarnAfter:          warnAfter,
		HistoryCount:       historyCount,
		MaxSimilarityRatio: maxRatio,
	}

	previous := config.App
	config.App = cfg
	t.Cleanup(func() { config.App = previous })
	return cfg
}

// MustHashPassword hashes a password with the cheapest cost for test speed.
func MustHashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}
	return string(hash)
}

// CreateTestUser inserts a user with the given raw password.
func CreateTestUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.org", username),
		Password: MustHashPassword(t, password),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SetLastChanged upserts the user's PasswordChange record to a fixed time.
func SetLastChanged(t *testing.T, db *gorm.DB, userID uint, at time.Time) {
	t.Helper()

	var record models.PasswordChange
	err := db.Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		record = models.PasswordChange{UserID: userID, LastChanged: at}
		if err := db.Create(&record).Error; err != nil {
			t.Fatalf("Failed to create password change record: %v", err)
		}
		return
	}
	record.LastChanged = at
	if err := db.Save(&record).Error; err != nil {
		t.Fatalf("Failed to update password change record: %v", err)
	}
}
