// File: laundrybook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"laundrybook/config"
	"laundrybook/database"
	"laundrybook/database/store"
	"laundrybook/handlers"
	"laundrybook/middleware"
	"laundrybook/routes"
	"laundrybook/services/board"
	"laundrybook/services/notification"
	"laundrybook/services/session"
	"laundrybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	documentStore := store.NewMongoStore(db)

	// Background notification delivery.
	taskRedis := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
	asynqClient := asynq.NewClient(taskRedis)
	defer asynqClient.Close()

	asynqServer := asynq.NewServer(taskRedis, asynq.Config{Concurrency: 5})
	notificationWorker := notification.NewWorker(db)
	go func() {
		if err := asynqServer.Run(notificationWorker.NewServeMux()); err != nil {
			logger.Sugar().Fatalf("main: notification worker failed: %v", err)
		}
	}()

	// Services.
	otpProvider := &session.RedisOTPProvider{
		Client:     utils.GetOTPCacheClient(),
		CodeLength: config.AppConfig.OTPLength,
		TTL:        time.Duration(config.AppConfig.OTPTTLMinutes) * time.Minute,
	}
	tokenManager := &session.RedisTokenManager{
		Client: utils.GetAuthCacheClient(),
		TTL:    24 * time.Hour,
	}
	sessionService := session.NewDefaultSessionService(documentStore, otpProvider, tokenManager)
	sessionService.SendPerMinute = config.AppConfig.OTPSendPerMin

	notificationService := notification.NewAsynqNotificationService(asynqClient)
	slotBoard := board.NewDefaultBoard(documentStore, notificationService)

	boardCtx, stopBoard := context.WithCancel(context.Background())
	defer stopBoard()
	if err := slotBoard.Start(boardCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to start slot board: %v", err)
	}

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	handlerBundle := &routes.HandlerBundle{
		Auth:   handlers.NewAuthHandler(sessionService),
		Board:  handlers.NewBoardHandler(slotBoard, logger),
		Admin:  handlers.NewAdminHandler(documentStore),
		Tokens: tokenManager,
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetAuthCacheClient(), utils.GetOTPCacheClient()},
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

	stopBoard()
	slotBoard.Stop()
	asynqServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
