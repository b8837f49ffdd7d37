package controllers_test

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/routes"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	gob.Register(utils.Notice{})
	gob.Register([]utils.Notice{})
}

// apiClient drives the router like a browser would: it carries the session
// cookie between requests and sends the bearer token once logged in.
type apiClient struct {
	t       *testing.T
	router  *gin.Engine
	cookies []*http.Cookie
	token   string
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	return &apiClient{t: t, router: routes.SetupRouter()}
}

func (c *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		replaced := false
		for i, existing := range c.cookies {
			if existing.Name == cookie.Name {
				c.cookies[i] = cookie
				replaced = true
				break
			}
		}
		if !replaced {
			c.cookies = append(c.cookies, cookie)
		}
	}
	return w
}

func (c *apiClient) register(username, email, password string) {
	c.t.Helper()

	w := c.do(http.MethodPost, "/v1/auth/register", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())
}

// login authenticates, stores the token on the client and returns the
// response data.
func (c *apiClient) login(email, password string) map[string]interface{} {
	c.t.Helper()

	w := c.do(http.MethodPost, "/v1/auth/login", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(c.t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	data := responseData(c.t, w)
	token, _ := data["token"].(string)
	require.NotEmpty(c.t, token)
	c.token = token
	return data
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var resp utils.StandardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return data
}

func changeRequest(oldPassword, newPassword string) gin.H {
	return gin.H{
		"old_password":              oldPassword,
		"new_password":              newPassword,
		"new_password_confirmation": newPassword,
	}
}

func historyCount(t *testing.T, userID uint) int64 {
	t.Helper()

	var count int64
	require.NoError(t, config.DB.Model(&models.PasswordHistory{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func lastChanged(t *testing.T, userID uint) time.Time {
	t.Helper()

	var record models.PasswordChange
	require.NoError(t, config.DB.Where("user_id = ?", userID).First(&record).Error)
	return record.LastChanged
}

func userByEmail(t *testing.T, email string) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, config.DB.Where("email = ?", email).First(&user).Error)
	return &user
}

func TestChangePasswordAdvancesRotationState(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")
	client.login("bob@example.org", "OrigPass1x")

	user := userByEmail(t, "bob@example.org")
	before := lastChanged(t, user.ID)
	require.EqualValues(t, 1, historyCount(t, user.ID))

	w := client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("OrigPass1x", "SecondPass2y"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, lastChanged(t, user.ID).After(before))
	assert.EqualValues(t, 2, historyCount(t, user.ID))

	// The session that performed the change keeps working as-is.
	w = client.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The new credential authenticates a fresh login too.
	client.login("bob@example.org", "SecondPass2y")
	w = client.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePasswordInvalidatesOtherSessions(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	first := newAPIClient(t)
	first.register("bob", "bob@example.org", "OrigPass1x")
	first.login("bob@example.org", "OrigPass1x")

	second := newAPIClient(t)
	second.login("bob@example.org", "OrigPass1x")

	w := second.do(http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = first.do(http.MethodPut, "/v1/profile/password",
		changeRequest("OrigPass1x", "SecondPass2y"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The other session carries the old credential stamp and is logged out.
	w = second.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The changing session is unaffected.
	w = first.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePasswordRejectsSimilarWithoutSideEffects(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")
	client.login("bob@example.org", "OrigPass1x")

	user := userByEmail(t, "bob@example.org")
	before := lastChanged(t, user.ID)

	w := client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("OrigPass1x", "OrigPass1xy"))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "too similar")

	// The stored credential and rotation state are untouched.
	assert.Equal(t, before, lastChanged(t, user.ID))
	assert.EqualValues(t, 1, historyCount(t, user.ID))
	assert.Equal(t, user.Password, userByEmail(t, "bob@example.org").Password)

	// The rejected attempt does not invalidate the session either.
	w = client.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChangePasswordRejectsReusedPassword(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")
	client.login("bob@example.org", "OrigPass1x")

	w := client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("OrigPass1x", "SecondPass2y"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The original password is still in the retained history.
	w = client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("SecondPass2y", "OrigPass1x"))
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "already been used")

	user := userByEmail(t, "bob@example.org")
	assert.EqualValues(t, 2, historyCount(t, user.ID))
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 24*time.Hour, time.Hour, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")
	client.login("bob@example.org", "OrigPass1x")

	w := client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("WrongPass9z", "SecondPass2y"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForcedChangeFlow(t *testing.T) {
	db := utils.SetupTestDB(t)
	utils.SetupTestConfig(t, 600*time.Second, 60*time.Second, 3, 70)

	client := newAPIClient(t)
	client.register("bob", "bob@example.org", "OrigPass1x")

	user := userByEmail(t, "bob@example.org")
	utils.SetLastChanged(t, db, user.ID, time.Now().Add(-601*time.Second))

	// Login succeeds but reports the expiry and raises the forced flag.
	data := client.login("bob@example.org", "OrigPass1x")
	assert.Equal(t, string(utils.PasswordExpired), data["password_status"])
	assert.Contains(t, data["message"], "must be changed")

	// Every authenticated request is redirected to the change form.
	w := client.do(http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/v1/profile/password", w.Header().Get("Location"))

	// The change form itself stays reachable.
	w = client.do(http.MethodGet, "/v1/profile/password", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"must_change":true`)

	w = client.do(http.MethodPut, "/v1/profile/password",
		changeRequest("OrigPass1x", "SecondPass2y"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The same session continues normally, no redirect and no re-login.
	w = client.do(http.MethodGet, "/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A fresh login with the new password gets unrestricted access too.
	data = client.login("bob@example.org", "SecondPass2y")
	assert.Equal(t, string(utils.PasswordValid), data["password_status"])

	w = client.do(http.MethodGet, "/v1/profile", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
