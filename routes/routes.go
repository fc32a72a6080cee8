package routes

import (
	"time"

	userRepo "memorybook/database/repository/user"
	"memorybook/handlers"
	"memorybook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-in, sign-out and link verification.
func RegisterAuthRoutes(r *gin.Engine, users userRepo.UserRepository) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", handlers.RegisterHandler)
		api.POST("/login", handlers.LoginHandler)
		api.GET("/verify-login", handlers.VerifyLoginHandler)

		// Protected routes (require a live session)
		api.Use(middleware.SessionAuthMiddleware(users))
		api.POST("/logout", handlers.LogoutHandler)
		api.GET("/session", handlers.SessionStatusHandler)
		api.PUT("/fcm-token", handlers.UpdateFCMTokenHandler)
	}
}

// RegisterWorkspaceRoutes registers the shared workspace and bottle
// endpoints. All of them require a live session.
func RegisterWorkspaceRoutes(r *gin.Engine, users userRepo.UserRepository) {
	api := r.Group("/api/workspace")
	{
		api.Use(middleware.SessionAuthMiddleware(users))
		api.GET("", handlers.GetWorkspaceHandler)
		api.PUT("/bottle/message", handlers.UpdateBottleMessageHandler)
		api.PUT("/bottle/position", handlers.MoveBottleHandler)
		api.POST("/bottle/relocate", handlers.RelocateBottleHandler)
		api.POST("/bottle/replies", handlers.ReplyToBottleHandler)
		api.DELETE("/bottle/replies/:replyId", handlers.DeleteBottleReplyHandler)
	}
}

// RegisterContentRoutes registers locations, albums, media and music.
func RegisterContentRoutes(r *gin.Engine, users userRepo.UserRepository) {
	api := r.Group("/api/content")
	{
		api.Use(middleware.SessionAuthMiddleware(users))
		api.POST("/locations", handlers.CreateLocationHandler)
		api.GET("/locations", handlers.ListLocationsHandler)
		api.DELETE("/locations/:id", handlers.DeleteLocationHandler)

		api.POST("/albums", handlers.CreateAlbumHandler)
		api.GET("/albums", handlers.ListAlbumsHandler)
		api.DELETE("/albums/:id", handlers.DeleteAlbumHandler)

		api.POST("/media", handlers.AddMediaHandler)
		api.GET("/media", handlers.ListMediaHandler)
		api.DELETE("/media/:id", handlers.DeleteMediaHandler)

		api.POST("/music", handlers.AddMusicHandler)
		api.GET("/music", handlers.ListMusicHandler)
		api.DELETE("/music/:id", handlers.DeleteMusicHandler)
	}
}

// RegisterStorageRoutes registers blob upload and download endpoints.
func RegisterStorageRoutes(r *gin.Engine, users userRepo.UserRepository) {
	api := r.Group("/api/storage")
	{
		api.Use(middleware.SessionAuthMiddleware(users))
		api.POST("/upload/:bucket", handlers.UploadFileHandler)
		api.GET("/download/:type", handlers.GetSecureDownloadURLHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, users userRepo.UserRepository) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterAuthRoutes(r, users)
	RegisterWorkspaceRoutes(r, users)
	RegisterContentRoutes(r, users)
	RegisterStorageRoutes(r, users)
	RegisterHealthRoute(r)
}
