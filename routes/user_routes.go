package routes

import (
	"github.com/Nikhil-836/PassRotate/controllers"
	"github.com/Nikhil-836/PassRotate/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes sets up authentication and profile routes. Every
// authenticated route passes through the password-rotation gate; the
// change-password and logout endpoints are exempted inside the gate itself.
func initUserRoutes(v1 *gin.RouterGroup) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", controllers.RegisterUser)
		auth.POST("/login", controllers.LoginUser)
		auth.POST("/logout", middleware.AuthMiddleware(), controllers.LogoutUser)
	}

	profile := v1.Group("/profile")
	profile.Use(middleware.AuthMiddleware(), middleware.PasswordRotateMiddleware())
	{
		profile.GET("", controllers.GetProfile)

		// Forced-change flow
		profile.GET("/password", controllers.ShowChangePassword)
		profile.PUT("/password", controllers.ChangePassword)
	}
}
