package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"centrale/internal/cache"
	"centrale/internal/events"
	"centrale/internal/files"
	"centrale/internal/handler"
	"centrale/internal/httpserver"
	"centrale/internal/render"
	"centrale/internal/repository"
	"centrale/internal/service"
	"centrale/pkg/config"
	"centrale/pkg/db"
	"centrale/pkg/logger"
	"centrale/pkg/mq"
	"centrale/pkg/outbox"
	redisclient "centrale/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlogger, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	dbConn, err := db.NewPool(ctx, cfg.DB, zlogger)
	if err != nil {
		zlogger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := repository.EnsureSchema(ctx, dbConn); err != nil {
		zlogger.Fatal("Schema setup failed", zap.Error(err))
	}
	outboxRepo := outbox.NewRepository(dbConn)
	if err := outboxRepo.EnsureSchema(ctx); err != nil {
		zlogger.Fatal("Outbox schema setup failed", zap.Error(err))
	}

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ publisher and outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		zlogger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, zlogger)
	go dispatcher.Start(ctx)

	// Attachment storage
	fileManager, err := files.NewManager(cfg.Files.Root, cfg.Files.BaseURL, zlogger)
	if err != nil {
		zlogger.Fatal("failed to init file storage", zap.Error(err))
	}

	boardCache := cache.NewBoardCache(rdb, 5*time.Minute, zlogger)

	// Cache invalidation consumer: other replicas' writes reach this one
	// through the events exchange.
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "centrale-cache-invalidation", "centrale.board.*", zlogger)
	if err != nil {
		zlogger.Fatal("failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(events.NewBoardEventHandler(boardCache, zlogger).Handle)
	go func() {
		if err := consumer.StartConsuming(ctx); err != nil {
			zlogger.Error("consumer stopped", zap.Error(err))
		}
	}()

	// Init repositories
	boardRepo := repository.NewBoardRepository(dbConn, outboxRepo, zlogger)
	userRepo := repository.NewUserRepository(dbConn, zlogger)

	// Init services
	boardService := service.NewBoardService(boardRepo, fileManager, boardCache, zlogger)
	userService := service.NewUserService(userRepo, cfg.JWT.Secret)

	renderer, err := render.New()
	if err != nil {
		zlogger.Fatal("failed to init renderer", zap.Error(err))
	}

	// Init handlers
	authHandler := handler.NewAuthHandler(userService, zlogger)
	boardHandler := handler.NewBoardHandler(boardService, zlogger)
	pageHandler := handler.NewPageHandler(boardService, renderer, zlogger)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		boardHandler,
		pageHandler,
		cfg.JWT.Secret,
		cfg.Files.Root,
		dbConn,
	)

	zlogger.Info("Server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Env),
	)
	if err := router.Run(cfg.Server.Port); err != nil {
		zlogger.Fatal("server start failed", zap.Error(err))
	}
}
