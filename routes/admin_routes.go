package routes

import (
	"github.com/Nikhil-836/PassRotate/controllers"
	"github.com/Nikhil-836/PassRotate/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes sets up the administrative read views over the rotation
// state. List/display only; admins are subject to the rotation gate too.
func initAdminRoutes(v1 *gin.RouterGroup) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.PasswordRotateMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/password-changes", controllers.ListPasswordChanges)
		admin.GET("/password-changes/export", controllers.ExportPasswordChanges)
		admin.GET("/password-history", controllers.ListPasswordHistory)
	}
}
