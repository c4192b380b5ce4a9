package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cleancity/wastewatch-api/config"
	"github.com/cleancity/wastewatch-api/controllers"
	"github.com/cleancity/wastewatch-api/middleware"
	"github.com/cleancity/wastewatch-api/models"
	"github.com/cleancity/wastewatch-api/services"
)

func main() {
	log.Println("Starting WasteWatch API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(&models.User{}, &models.Complaint{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize image storage
	if _, err := services.InitImageService(cfg); err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Start server
	router := setupRouter(cfg)
	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter wires middleware and routes onto a fresh engine
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	// Panics become the generic 500 envelope; nothing internal leaks
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
	}))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Health check endpoint
	router.GET("/api/health", healthCheck)

	// Authentication routes
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", middleware.EnsureValidToken(cfg), controllers.Me)
	}

	// Complaint routes
	complaints := router.Group("/api/complaints")
	complaints.Use(middleware.EnsureValidToken(cfg))
	{
		complaints.POST("", controllers.CreateComplaint)
		complaints.GET("", controllers.GetComplaints)
		complaints.GET("/stats", middleware.RequireAdmin(), controllers.GetComplaintStats)
		complaints.GET("/:id", controllers.GetComplaint)
		complaints.PATCH("/:id", middleware.RequireAdmin(), controllers.UpdateComplaint)
		complaints.DELETE("/:id", controllers.DeleteComplaint)
	}

	// Uploaded complaint photos
	router.GET("/uploads/:filename", controllers.GetUploadedImage)

	// Unrecognized routes get the same envelope as everything else
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
		})
	})

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "WasteWatch API is running",
	})
}
