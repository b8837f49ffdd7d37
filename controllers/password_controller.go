package controllers

import (
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/middleware"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ChangePasswordRequest represents the password change request
type ChangePasswordRequest struct {
	OldPassword             string `json:"old_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required"`
	NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required"`
}

// Validation errors surfaced on the change form.
var (
	ErrPasswordTooSimilar = utils.BadRequestError(utils.ErrPasswordSimilarMsg, nil)
	ErrPasswordReused     = utils.BadRequestError(utils.ErrPasswordReusedMsg, nil)
)

// validateNewPassword runs the credential-policy checks in a fixed order:
// similarity to the immediately prior password, then reuse against the
// retained history (including the current credential). Baseline strength is
// enforced at registration only.
func validateNewPassword(user *models.User, oldPassword, newPassword string) *utils.AppError {
	if ratio := utils.SimilarityRatio(oldPassword, newPassword); ratio >= config.App.MaxSimilarityRatio {
		utils.LogDebug("Similarity ratio %d at or over limit %d for user %d",
			ratio, config.App.MaxSimilarityRatio, user.ID)
		return ErrPasswordTooSimilar
	}

	used, err := utils.HistoryContains(config.DB, user, newPassword, config.App.HistoryCount)
	if err != nil {
		// A stored hash that cannot be verified rejects the candidate
		// rather than letting it pass unchecked.
		return utils.InternalError("Failed to verify password history", err)
	}
	if used {
		return ErrPasswordReused
	}
	return nil
}

// ShowChangePassword reports the current rotation status for the
// change-password endpoint. Always reachable: the rotation gate exempts this
// path so an expired user can reach the form that clears the flag.
func ShowChangePassword(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found in context")
		return
	}
	userModel := user.(models.User)

	session := sessions.Default(c)
	forced, _ := session.Get(middleware.SessionKeyForceChange).(bool)

	status, _ := c.Get(middleware.ContextKeyPasswordStatus)

	message := "Password status"
	if forced {
		message = "Password change required"
	}
	utils.Success(c, message, gin.H{
		"user": gin.H{
			"id":       userModel.ID,
			"username": userModel.Username,
		},
		"password_status": status,
		"must_change":     forced,
		"notices":         utils.PopNotices(c),
	})
}

// ChangePassword handles password changes: verifies the old credential, runs
// the similarity and reuse checks, then commits the new credential together
// with its rotation bookkeeping in one transaction.
func ChangePassword(c *gin.Context) {
	utils.LogInfo("ChangePassword called")

	user, exists := c.Get("user")
	if !exists {
		utils.LogError("User not found in context")
		utils.Unauthorized(c, "User not found in context")
		return
	}
	userModel := user.(models.User)
	utils.LogInfo("Processing password change for user ID: %d", userModel.ID)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid request format: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(req.OldPassword)); err != nil {
		utils.LogError("Current password verification failed for user ID: %d", userModel.ID)
		utils.Unauthorized(c, "Current password is incorrect")
		return
	}

	if req.NewPassword != req.NewPasswordConfirmation {
		utils.LogError("Password confirmation mismatch for user ID: %d", userModel.ID)
		utils.BadRequest(c, "New password and confirmation do not match", nil)
		return
	}

	if appErr := validateNewPassword(&userModel, req.OldPassword, req.NewPassword); appErr != nil {
		utils.LogError("Password validation failed for user ID: %d: %s", userModel.ID, appErr.Message)
		utils.Error(c, appErr.Code, appErr.Message, nil)
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.LogError("Failed to hash password for user ID: %d: %v", userModel.ID, err)
		utils.InternalServerError(c, "Failed to hash password", nil)
		return
	}

	now := time.Now()
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userModel.ID).
			Update("password", hashedPassword).Error; err != nil {
			return err
		}

		// Refresh the last-changed timestamp; last writer wins on
		// concurrent changes for the same user.
		var record models.PasswordChange
		err := tx.Where("user_id = ?", userModel.ID).First(&record).Error
		switch {
		case err == nil:
			record.LastChanged = now
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
		default:
			record = models.PasswordChange{UserID: userModel.ID, LastChanged: now}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}

		if err := utils.RecordPassword(tx, userModel.ID, hashedPassword, now); err != nil {
			return err
		}
		return utils.PruneHistory(tx, userModel.ID, config.App.HistoryCount)
	})
	if err != nil {
		utils.LogError("Failed to commit password change for user ID: %d: %v", userModel.ID, err)
		utils.InternalServerError(c, "Failed to update password", nil)
		return
	}

	// Re-stamp this session for the new credential and clear the forced
	// flag. Every other session still carries the old stamp and stops
	// authenticating; the session that performed the change continues.
	userModel.Password = hashedPassword
	session := sessions.Default(c)
	session.Set(middleware.SessionKeyAuthHash, utils.SessionAuthHash(&userModel))
	session.Delete(middleware.SessionKeyForceChange)
	if err := session.Save(); err != nil {
		utils.LogError("Failed to update session after password change for user ID: %d: %v", userModel.ID, err)
		utils.InternalServerError(c, "Failed to save session", nil)
		return
	}

	utils.LogInfo("Password changed successfully for user ID: %d", userModel.ID)
	utils.Success(c, utils.MsgPasswordChangeSuccess, gin.H{
		"user": gin.H{
			"id": userModel.ID,
		},
	})
}
