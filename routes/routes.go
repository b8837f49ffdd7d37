package routes

import (
	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter() *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// Session middleware carries the forced-change flag and notice queue
	store := cookie.NewStore([]byte(config.App.SessionSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   false, // Set to true in production with HTTPS
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("passrotate", store))

	// API version group
	v1 := router.Group("/v1")
	{
		initUserRoutes(v1)
		initAdminRoutes(v1)
	}

	return router
}
