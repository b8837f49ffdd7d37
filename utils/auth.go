package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password against a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken creates a JWT token for a user
func GenerateToken(user *models.User) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["user_id"] = user.ID
	claims["email"] = user.Email
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix() // 24 hour expiration

	tokenString, err := token.SignedString([]byte(config.App.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// SessionAuthHash derives a stamp from the user's current credential. Stored
// in the session at login and compared on every request, so changing the
// password invalidates every other session the user has open while the session
// that performed the change keeps its fresh stamp.
func SessionAuthHash(user *models.User) string {
	mac := hmac.New(sha256.New, []byte(config.App.JWTSecret))
	mac.Write([]byte(user.Password))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSessionAuthHash reports whether a session stamp matches the user's
// current credential.
func ValidSessionAuthHash(stamp string, user *models.User) bool {
	return stamp != "" && hmac.Equal([]byte(stamp), []byte(SessionAuthHash(user)))
}

// ValidateToken validates a JWT token and returns the user ID
func ValidateToken(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.App.JWTSecret), nil
	})

	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(float64)
		if !ok {
			return 0, errors.New("invalid user ID in token")
		}
		return uint(userID), nil
	}

	return 0, errors.New("invalid token")
}

// TokenExpiry extracts the expiration time from a token without verifying it.
// Used when blacklisting so entries can be cleaned up after they expire anyway.
func TokenExpiry(tokenString string) time.Time {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err == nil {
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				return time.Unix(int64(exp), 0)
			}
		}
	}
	return time.Now().Add(24 * time.Hour) // fallback
}

// BlacklistToken records a token so it can no longer authenticate requests
func BlacklistToken(tokenString string, expiresAt time.Time) error {
	blacklisted := models.BlacklistedToken{
		Token:     tokenString,
		ExpiresAt: expiresAt,
	}
	return config.DB.Create(&blacklisted).Error
}

// IsTokenBlacklisted reports whether a token has been invalidated. A lookup
// error is returned so callers reject the request instead of letting a revoked
// token through while the database is unavailable.
func IsTokenBlacklisted(tokenString string) (bool, error) {
	var count int64
	if err := config.DB.Model(&models.BlacklistedToken{}).
		Where("token = ?", tokenString).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
