package utils

import (
	"fmt"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
)

// PasswordStatus classifies a user's password against the rotation policy.
type PasswordStatus string

const (
	PasswordValid   PasswordStatus = "valid"
	PasswordWarning PasswordStatus = "expiring-soon"
	PasswordExpired PasswordStatus = "expired"
)

// PolicyResult holds the outcome of evaluating the rotation policy.
type PolicyResult struct {
	Expired   bool
	Warning   bool
	Remaining time.Duration // zero when expired
}

// Status collapses the result into a request-level status value.
func (r PolicyResult) Status() PasswordStatus {
	switch {
	case r.Expired:
		return PasswordExpired
	case r.Warning:
		return PasswordWarning
	default:
		return PasswordValid
	}
}

// EvaluatePassword applies the rotation policy to a single change timestamp.
// Pure function of its inputs; tests supply any clock value as now.
func EvaluatePassword(lastChanged, now time.Time, rotateAfter, warnAfter time.Duration) PolicyResult {
	elapsed := now.Sub(lastChanged)
	if elapsed > rotateAfter {
		return PolicyResult{Expired: true}
	}
	return PolicyResult{
		Warning:   elapsed > rotateAfter-warnAfter,
		Remaining: rotateAfter - elapsed,
	}
}

// FormatRemaining renders a remaining duration for user-facing warnings.
// Truncated to minutes once past the first minute.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return d.Truncate(time.Minute).String()
}

// PasswordChecker evaluates the rotation policy for a specific user,
// resolving the last change time from their PasswordChange record and
// falling back to the account creation time when no record exists. The
// fallback is required because accounts may predate this subsystem.
type PasswordChecker struct {
	user        *models.User
	lastChanged time.Time
}

// NewPasswordChecker builds a checker for the given user.
func NewPasswordChecker(user *models.User) *PasswordChecker {
	checker := &PasswordChecker{user: user, lastChanged: user.CreatedAt}
	var record models.PasswordChange
	if err := config.DB.Where("user_id = ?", user.ID).First(&record).Error; err == nil {
		checker.lastChanged = record.LastChanged
	}
	return checker
}

// LastChanged returns the resolved last-change timestamp.
func (pc *PasswordChecker) LastChanged() time.Time {
	return pc.lastChanged
}

// Evaluate applies the configured rotation policy at the given time.
func (pc *PasswordChecker) Evaluate(now time.Time) PolicyResult {
	return EvaluatePassword(pc.lastChanged, now, config.App.RotateAfter, config.App.WarnAfter)
}

// IsExpired reports whether the user's password has passed the rotation period.
func (pc *PasswordChecker) IsExpired(now time.Time) bool {
	return pc.Evaluate(now).Expired
}

// IsWarning reports whether the user is inside the warning window.
func (pc *PasswordChecker) IsWarning(now time.Time) bool {
	return pc.Evaluate(now).Warning
}

// ExpiresIn returns a human-readable time to expiry, or "" when expired
// or when nothing remains to report.
func (pc *PasswordChecker) ExpiresIn(now time.Time) string {
	result := pc.Evaluate(now)
	if result.Expired {
		return ""
	}
	return FormatRemaining(result.Remaining)
}
