// File: savipets/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"savipets/config"
	"savipets/cron"
	"savipets/database"
	bookingRepo "savipets/database/repository/booking"
	"savipets/database/visitstore"
	"savipets/handlers"
	"savipets/middleware"
	"savipets/routes"
	"savipets/services/command"
	"savipets/services/notification"
	"savipets/services/visit"
	"savipets/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockClient()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Stores and repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	visits := visitstore.NewFirestoreVisitStore(utils.FirestoreClient, config.AppConfig.FirestoreVisitColl, logger)

	// Services.
	dispatcher, err := notification.NewFCMDispatcher(utils.FCMClient, notification.NewMongoTokenSource(), logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification dispatcher: %v", err)
	}

	reminderClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer reminderClient.Close()

	visitManager := visit.NewManager(visits, logger, visit.WithNotifier(dispatcher))
	conflictChecker := &command.SitterScheduleChecker{
		Bookings: bookings,
		Cache:    utils.GetCacheClient(),
		Logger:   logger,
	}
	executor := &command.Executor{
		Bookings:  bookings,
		Visits:    visits,
		Locks:     utils.GetLockClient(),
		Notifier:  dispatcher,
		Reminders: reminderClient,
		Logger:    logger,
	}

	visitHandler := handlers.NewVisitHandler(visitManager, logger)
	rescheduleHandler := handlers.NewRescheduleHandler(bookings, executor, conflictChecker, logger)

	routes.RegisterRoutes(router, visitHandler, rescheduleHandler)

	cron.InitReminderWorker(dispatcher)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetLockClient()},
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

	// Tear down every live reconciler before the process exits; leaked watches
	// are a correctness bug, not just a resource one.
	visitManager.ReleaseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
