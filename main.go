// File: memorybook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"memorybook/config"
	"memorybook/cron"
	"memorybook/database"
	contentRepoPkg "memorybook/database/repository/content"
	userRepoPkg "memorybook/database/repository/user"
	workspaceRepoPkg "memorybook/database/repository/workspace"
	"memorybook/handlers"
	"memorybook/routes"
	"memorybook/services/auth"
	"memorybook/services/content"
	"memorybook/services/identity"
	"memorybook/services/notification"
	"memorybook/services/workspace"
	"memorybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Warnf("main: cloudinary unavailable, media uploads disabled: %v", err)
	}

	// Async verification-mail delivery.
	cron.InitQueueClient()
	cron.InitMailWorker(utils.NewSMTPMailer())

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	users := userRepoPkg.NewMongoUserRepo()
	workspaces := workspaceRepoPkg.NewMongoWorkspaceRepo()
	contents := contentRepoPkg.NewMongoContentRepo()

	allowed := config.AllowedEmailList()

	// services.
	provider := identity.NewLocalProvider(
		users,
		config.AppConfig.AppBaseURL,
		time.Duration(config.AppConfig.LoginTokenTTLMS)*time.Millisecond,
		cron.EnqueueVerificationEmail,
	)

	authService := auth.NewDefaultAuthService(
		users,
		provider,
		allowed,
		time.Duration(config.AppConfig.SessionDurationMS)*time.Millisecond,
		utils.SessionCacheClient,
	)
	defer authService.Close()

	notificationService := &notification.DefaultNotificationService{
		UserRepo:      users,
		AllowedEmails: allowed,
	}

	workspaceService := &workspace.DefaultWorkspaceService{
		Repo:          workspaces,
		UserRepo:      users,
		AllowedEmails: allowed,
		WorkspaceID:   config.AppConfig.WorkspaceID,
		Notifier:      notificationService,
	}

	contentService := &content.DefaultContentService{
		Repo: contents,
	}

	// handlers.
	handlers.AuthSvc = authService
	handlers.WorkspaceSvc = workspaceService
	handlers.UserRepo = users
	handlers.ContentSvc = contentService
	handlers.StorageSvc = cloudinaryStorageService

	routes.RegisterRoutes(router, users)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.CacheClient, utils.SessionCacheClient},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
