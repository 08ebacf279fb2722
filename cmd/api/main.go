package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskhub/config"
	"taskhub/internal/auth"
	"taskhub/internal/bootstrap"
	"taskhub/internal/cache"
	"taskhub/internal/handler"
	"taskhub/internal/httpserver"
	"taskhub/internal/repository"
	"taskhub/internal/service"
	"taskhub/pkg/db"
	"taskhub/pkg/logger"
	"taskhub/pkg/mq"
	"taskhub/pkg/outbox"
	redisclient "taskhub/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ publisher and outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)

	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	go dispatcher.Start(dispatchCtx)

	// Init repositories
	userRepo := repository.NewUserRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn, outboxRepo, log)
	statusRepo := repository.NewStatusRepository(dbConn)
	labelRepo := repository.NewLabelRepository(dbConn)

	statusCache := cache.NewStatusCache(rdb, 5*time.Minute, log)

	// Init auth
	verifier := auth.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ElevatedRole, userRepo)

	// Init services
	authService := service.NewAuthService(userRepo, verifier)
	userService := service.NewUserService(userRepo, taskRepo, log)
	taskService := service.NewTaskService(taskRepo, userRepo, statusRepo, labelRepo, statusCache, log)
	statusService := service.NewStatusService(statusRepo, taskRepo, statusCache, log)
	labelService := service.NewLabelService(labelRepo, log)

	// Seed defaults
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSeed()
	if err := bootstrap.Seed(seedCtx, cfg.Seed, userRepo, statusRepo, labelRepo, log); err != nil {
		log.Fatal("Data seeding failed", zap.Error(err))
	}

	// Init handlers
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	statusHandler := handler.NewStatusHandler(statusService, log)
	labelHandler := handler.NewLabelHandler(labelService, log)

	// Router
	router := httpserver.NewRouter(authHandler, userHandler, taskHandler, statusHandler, labelHandler, verifier)

	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("Server start failed", zap.Error(err))
	}
}
