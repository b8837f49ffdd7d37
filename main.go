package main

import (
	"encoding/gob"
	"log"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/controllers"
	"github.com/Nikhil-836/PassRotate/routes"
	"github.com/Nikhil-836/PassRotate/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Register types for session serialization
	gob.Register(utils.Notice{})
	gob.Register([]utils.Notice{})

	// Load environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Create admin account if configured
	if err := controllers.EnsureAdminUser(); err != nil {
		utils.LogError("Failed to create admin user: %v", err)
		log.Fatal("Failed to create admin user:", err)
	}

	// Set up router
	router := routes.SetupRouter()

	port := cfg.Port
	if port == "" {
		port = utils.DefaultPort
	}

	utils.LogInfo("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
