package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	controller "github.com/Itish41/ReguGuard/controller"
	"github.com/Itish41/ReguGuard/initializers"
	middleware "github.com/Itish41/ReguGuard/middleware"
	services "github.com/Itish41/ReguGuard/service"
)

func init() {
	if err := initializers.LoadEnv(); err != nil {
		log.Fatalf("[CRITICAL] Failed to load env: %s", err)
	}
	if err := initializers.ConnectDB(); err != nil {
		log.Fatalf("[CRITICAL] Failed to initialize database connection: %s", err)
	}
	if err := initializers.Migrate(); err != nil {
		log.Fatalf("[CRITICAL] Failed to run database migrations: %s", err)
	}
}

func main() {
	workspace, err := services.NewWorkspaceService(initializers.DB)
	if err != nil {
		log.Fatalf("Failed to initialize workspace service: %s", err)
	}

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Global rate limiter for most routes
	router.Use(middleware.GlobalRateLimiter.Limit())

	// Uploads run OCR, so they get the stricter limit
	controller.NewWorkspaceController(workspace).RegisterRoutes(router, middleware.StrictRateLimiter.Limit())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server stopped: %s", err)
	}
}
