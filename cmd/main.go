package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tripmesh/concierge/config"
	"github.com/tripmesh/concierge/internal/api/v1/handlers"
	"github.com/tripmesh/concierge/internal/app"
	"github.com/tripmesh/concierge/internal/db"
	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/events"
	"github.com/tripmesh/concierge/internal/logger"
	"github.com/tripmesh/concierge/internal/services"
)

func main() {
	// .env is optional outside local development
	_ = godotenv.Load()
	logger.InitializeAndConfigure()

	dbPort, _ := strconv.Atoi(config.GetEnv("DB_PORT", "5432"))
	database, err := db.New(db.Options{
		Host:     config.GetEnv("DB_HOST", ""),
		User:     config.GetEnv("DB_USER", ""),
		Password: config.GetEnv("DB_PASSWORD", ""),
		DBName:   config.GetEnv("DB_NAME", ""),
		Port:     dbPort,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	settings := config.SettingsFromEnv()

	jobRepo := repos.NewReplyJobRepository(database)
	bookingRepo := repos.NewBookingRepository(database)
	hostRepo := repos.NewHostRepository(database)
	messageRepo := repos.NewMessageRepository(database)
	planRepo := repos.NewTripPlanRepository(database)
	orchestratorRepo := repos.NewOrchestratorJobRepository(database)

	replyQueue := services.NewReplyQueueService(settings, jobRepo, bookingRepo, hostRepo, messageRepo)
	planService := services.NewPlanService(planRepo)
	orchestratorService := services.NewOrchestratorService(orchestratorRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// New chat messages run the reply trigger gate off the event bus.
	events.Subscribe(events.EventMessageCreated, func(ctx context.Context, e events.Event) error {
		booking, err := bookingRepo.GetByID(ctx, e.BookingID)
		if err != nil {
			return err
		}
		result, err := replyQueue.MaybeEnqueueForMessage(ctx, booking, e.SenderID, e.MessageID)
		if err != nil {
			return err
		}
		logger.DebugWithFields("reply trigger gate", map[string]interface{}{
			"booking_id": e.BookingID,
			"message_id": e.MessageID,
			"reason":     result.Reason,
		})
		return nil
	})
	events.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go services.LaunchWorker(ctx, &wg, replyQueue)

	handler := handlers.NewHandler(replyQueue, planService, orchestratorService, bookingRepo, messageRepo)
	fiberApp := app.NewApp(handler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Shutdown signal received")
		cancel()
		_ = fiberApp.Shutdown()
	}()

	addr := ":" + config.GetEnv("PORT", "8080")
	if err := fiberApp.Listen(addr); err != nil {
		logger.Errorf("Server stopped: %v", err)
	}

	wg.Wait()
}
