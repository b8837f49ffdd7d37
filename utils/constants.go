package utils

// Application constants
const (
	// Application name
	AppName = "PassRotate"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default number of retained password history entries
	DefaultHistoryCount = 3

	// Default maximum similarity ratio between old and new password (0-100)
	DefaultMaxSimilarityRatio = 70

	// JWT token expiration (24 hours)
	JWTExpiration = "24h"

	// Default pagination limit
	DefaultPaginationLimit = 10

	// Minimum password length
	MinPasswordLength = 8

	// Maximum password length
	MaxPasswordLength = 64
)

// Error messages
const (
	// Authentication errors
	ErrInvalidCredentials = "Invalid email or password"
	ErrUserBlocked        = "Your account has been blocked"
	ErrInvalidToken       = "Invalid or expired token"
	ErrSessionInvalidated = "Session has been invalidated, please login again"

	// Rotation policy errors
	ErrPasswordExpiredMsg = "Password expired. Your password must be changed."
	ErrPasswordReusedMsg  = "This password has already been used"
	ErrPasswordSimilarMsg = "New password is too similar to the previous password"
)

// Success messages
const (
	MsgLoginSuccess          = "Login successful"
	MsgLogoutSuccess         = "Logout successful"
	MsgRegisterSuccess       = "Registration successful"
	MsgPasswordChangeSuccess = "Password changed successfully"
)
