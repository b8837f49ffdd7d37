package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSeedsRotationState(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")

	user := userByEmail(t, "bob@example.org")
	assert.NotEqual(t, "OrigPass1x", user.Password)

	// The initial credential counts against reuse from day one.
	assert.EqualValues(t, 1, historyCount(t, user.ID))

	var record models.PasswordChange
	require.NoError(t, config.DB.Where("user_id = ?", user.ID).First(&record).Error)
	assert.WithinDuration(t, time.Now(), record.LastChanged, time.Minute)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	w := client.do(http.MethodPost, "/v1/auth/register", gin.H{
		"username": "bob",
		"email":    "bob@example.org",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")

	w := client.do(http.MethodPost, "/v1/auth/register", gin.H{
		"username": "robert",
		"email":    "bob@example.org",
		"password": "OrigPass1x",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")

	w := client.do(http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "bob@example.org",
		"password": "WrongPass9z",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = client.do(http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "nobody@example.org",
		"password": "OrigPass1x",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginWarnsNearExpiry(t *testing.T) {
	db := utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 600*time.Second, 60*time.Second, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")

	user := userByEmail(t, "bob@example.org")
	utils.SetLastChanged(t, db, user.ID, time.Now().Add(-570*time.Second))

	data := client.login("bob@example.org", "OrigPass1x")
	assert.Equal(t, string(utils.PasswordWarning), data["password_status"])
	assert.Contains(t, data["message"], "expires in")
}

func TestLogoutBlacklistsToken(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")
	client.login("bob@example.org", "OrigPass1x")

	w := client.do(http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = client.do(http.MethodPost, "/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = client.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
