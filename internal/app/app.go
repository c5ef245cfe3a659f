package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campustalk_backend/database"
	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/config"
	"campustalk_backend/internal/email"
	"campustalk_backend/internal/handlers"
	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/routes"
	"campustalk_backend/internal/services"
	"campustalk_backend/internal/storage"
	"campustalk_backend/internal/validator"
	"campustalk_backend/internal/workers"
	"campustalk_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ginRouter, cleanup := SetupRouter(ctx, cfg, gormDB)
	defer cleanup()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers onto a gin engine.
// The returned cleanup closes the cache store and the event bus.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, func()) {
	// Cache: redis when configured, in-process memory otherwise.
	var store cache.Store
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to memory cache", "error", err)
			store = cache.NewMemoryStore()
		} else {
			store = redisStore
			logger.Info("Redis cache connected", "addr", cfg.Redis.Addr)
		}
	} else {
		store = cache.NewMemoryStore()
	}
	cacheLayer := cache.New(store, cache.Options{
		JitterFactor: cfg.Cache.JitterFactor,
		NegativeTTL:  cfg.Cache.NegativeTTL,
	})

	bus := realtime.NewBus()

	storageInstance, err := storage.NewStorage(storage.Config{
		Type:      cfg.Storage.Type,
		BasePath:  cfg.Storage.BasePath,
		BaseURL:   cfg.Storage.BaseURL,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Endpoint:  cfg.Storage.Endpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	// Repositories
	userRepo := repositories.NewUserRepository()
	friendshipRepo := repositories.NewFriendshipRepository()
	groupRepo := repositories.NewGroupRepository()
	messageRepo := repositories.NewMessageRepository()
	receiptRepo := repositories.NewReadReceiptRepository()
	notificationRepo := repositories.NewNotificationRepository()
	confessionRepo := repositories.NewConfessionRepository()

	// Services
	var emailChannel services.EmailChannel
	if cfg.Email.Enabled {
		emailChannel = email.NewSender(cfg, gormDB, userRepo)
	}

	readStatusService := services.NewReadStatusService(receiptRepo, messageRepo, groupRepo, cacheLayer, bus)
	messageService := services.NewMessageService(messageRepo, receiptRepo, groupRepo, friendshipRepo, readStatusService, cacheLayer, bus)
	unreadService := services.NewUnreadService(messageRepo, receiptRepo, groupRepo, cacheLayer, cfg.Cache.ListTTL)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, bus, emailChannel)
	friendshipService := services.NewFriendshipService(friendshipRepo, userRepo, notificationService)
	groupService := services.NewGroupService(groupRepo, userRepo, readStatusService, notificationService, cacheLayer, bus)
	likeService := services.NewLikeService(confessionRepo, cacheLayer, cfg.Cache.DefaultTTL, cfg.Cache.ListTTL)
	presenceService := services.NewPresenceService(userRepo, bus, cfg.Presence.HeartbeatInterval)
	attachmentService := services.NewAttachmentService(storageInstance)

	// WebSocket
	wsManager := ws.NewManager(bus)
	go wsManager.Run()

	// Handlers
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := &handlers.AppHandlers{
		ChatHandler:         handlers.NewChatHandler(baseHandler, messageService, readStatusService, unreadService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, notificationService),
		ConfessionHandler:   handlers.NewConfessionHandler(baseHandler, likeService),
		SocialHandler:       handlers.NewSocialHandler(baseHandler, friendshipService, groupService, presenceService),
		UploadHandler:       handlers.NewUploadHandler(baseHandler, attachmentService),
		WSHandler:           handlers.NewWSHandler(baseHandler, wsManager, gormDB, readStatusService, presenceService),
	}

	// Background workers
	workers.NewPresenceWorker(gormDB, cfg.Presence.HeartbeatInterval).Start(ctx)
	workers.NewRetentionWorker(gormDB, notificationRepo).Start(ctx)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers)

	cleanup := func() {
		bus.Close()
		if err := cacheLayer.Close(); err != nil {
			logger.Warn("cache close failed", "error", err)
		}
	}
	return ginRouter, cleanup
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
