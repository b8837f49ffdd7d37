package controllers

import (
	"github.com/Nikhil-836/PassRotate/middleware"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-gonic/gin"
)

// GetProfile returns the authenticated user's profile along with the
// password status the rotation gate attached to the request, and drains any
// pending notices so warnings surface exactly once.
func GetProfile(c *gin.Context) {
	user, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "User not found in context")
		return
	}
	userModel := user.(models.User)

	status, _ := c.Get(middleware.ContextKeyPasswordStatus)

	utils.Success(c, "Profile retrieved", gin.H{
		"user": gin.H{
			"id":            userModel.ID,
			"username":      userModel.Username,
			"email":         userModel.Email,
			"last_login_at": userModel.LastLoginAt,
			"created_at":    userModel.CreatedAt,
		},
		"password_status": status,
		"notices":         utils.PopNotices(c),
	})
}
