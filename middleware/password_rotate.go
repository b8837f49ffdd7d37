package middleware

import (
	"net/http"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// GateAction is the outcome of evaluating the rotation gate for one request.
type GateAction int

const (
	// GatePass lets the request continue untouched.
	GatePass GateAction = iota
	// GateWarn lets the request continue and queues an expiry warning.
	GateWarn
	// GateRedirect short-circuits the request to the change-password endpoint.
	GateRedirect
)

// Paths exempt from interception. The change-password endpoint must stay
// reachable or an expired user could never clear the forced-change flag.
const (
	ChangePasswordPath = "/v1/profile/password"
	LogoutPath         = "/v1/auth/logout"
)

// SessionKeyForceChange marks a session whose user logged in with an expired
// password and must change it before doing anything else. Set only at login,
// cleared only by a successful password change.
const SessionKeyForceChange = "force_password_change"

// NoticeTagPasswordRotate dedupes rotation warnings in the notice queue.
const NoticeTagPasswordRotate = "password_rotate"

// ContextKeyPasswordStatus is where the gate attaches the computed status.
const ContextKeyPasswordStatus = "password_status"

// GateRequest carries everything the gate decision needs about a request.
type GateRequest struct {
	Authenticated bool
	ForcedChange  bool
	LastChanged   time.Time
	Now           time.Time
	Method        string
	IsAsync       bool
	Path          string
}

// GateDecision is the gate's verdict for a single request.
type GateDecision struct {
	Action GateAction
	Status utils.PasswordStatus
	Notice string
}

// DecideGate evaluates the password-rotation state machine for one request.
// Pure function: clock, session flag, and route all arrive in the input, so
// it is testable without a running server.
func DecideGate(req GateRequest, rotateAfter, warnAfter time.Duration) GateDecision {
	if !req.Authenticated {
		return GateDecision{Action: GatePass, Status: utils.PasswordValid}
	}

	result := utils.EvaluatePassword(req.LastChanged, req.Now, rotateAfter, warnAfter)
	status := result.Status()
	onChangePage := req.Path == ChangePasswordPath

	if req.ForcedChange && !onChangePage {
		return GateDecision{Action: GateRedirect, Status: status}
	}
	if result.Expired && !onChangePage {
		return GateDecision{Action: GateRedirect, Status: status}
	}
	if result.Warning && req.Method == http.MethodGet && !req.IsAsync &&
		!onChangePage && req.Path != LogoutPath {
		notice := "Please change your password. It expires in " +
			utils.FormatRemaining(result.Remaining) + "."
		return GateDecision{Action: GateWarn, Status: status, Notice: notice}
	}
	return GateDecision{Action: GatePass, Status: status}
}

// PasswordRotateMiddleware enforces the rotation policy on every request:
// attaches the computed password status to the context, queues a warning when
// expiry is near, and redirects to the change-password endpoint when a change
// is required, before any downstream handler produces output. Must run after
// AuthMiddleware.
func PasswordRotateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.Next()
			return
		}
		userModel, ok := user.(models.User)
		if !ok {
			c.Next()
			return
		}

		session := sessions.Default(c)
		forced, _ := session.Get(SessionKeyForceChange).(bool)

		checker := utils.NewPasswordChecker(&userModel)
		decision := DecideGate(GateRequest{
			Authenticated: true,
			ForcedChange:  forced,
			LastChanged:   checker.LastChanged(),
			Now:           time.Now(),
			Method:        c.Request.Method,
			IsAsync:       c.GetHeader("X-Requested-With") == "XMLHttpRequest",
			Path:          c.FullPath(),
		}, config.App.RotateAfter, config.App.WarnAfter)

		c.Set(ContextKeyPasswordStatus, decision.Status)

		switch decision.Action {
		case GateRedirect:
			utils.LogInfo("Password change required for user %d, redirecting", userModel.ID)
			c.Redirect(http.StatusFound, ChangePasswordPath)
			c.Abort()
		case GateWarn:
			if err := utils.PushNotice(c, NoticeTagPasswordRotate, decision.Notice); err != nil {
				utils.LogError("Failed to queue password warning for user %d: %v", userModel.ID, err)
			}
			c.Next()
		default:
			c.Next()
		}
	}
}
