package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistRoundTrip(t *testing.T) {
	SetupTestDB(t)
	SetupTestConfig(t, 600*time.Second, 60*time.Second, 3, 70)

	blacklisted, err := IsTokenBlacklisted("some-token")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, BlacklistToken("some-token", time.Now().Add(time.Hour)))

	blacklisted, err = IsTokenBlacklisted("some-token")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestIsTokenBlacklistedFailsClosed(t *testing.T) {
	db := SetupTestDB(t)
	SetupTestConfig(t, 600*time.Second, 60*time.Second, 3, 70)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	// With the database unavailable, a revoked token must not slip through.
	_, err = IsTokenBlacklisted("some-token")
	assert.Error(t, err)
}

func TestSessionAuthHashTracksCredential(t *testing.T) {
	db := SetupTestDB(t)
	SetupTestConfig(t, 600*time.Second, 60*time.Second, 3, 70)

	user := CreateTestUser(t, db, "bob", "password")

	stamp := SessionAuthHash(user)
	require.NotEmpty(t, stamp)
	assert.True(t, ValidSessionAuthHash(stamp, user))
	assert.False(t, ValidSessionAuthHash("", user))

	// A stamp issued against the old credential stops matching.
	user.Password = MustHashPassword(t, "different")
	assert.False(t, ValidSessionAuthHash(stamp, user))
}
