package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"gamerit/api"
	"gamerit/application"
	"gamerit/config"
	"gamerit/database"
	"gamerit/domain/events"
	"gamerit/domain/interfaces"
	"gamerit/infrastructure"
	"gamerit/reddit"
	"gamerit/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting gamerit...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Run pending migrations
	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize NATS
	log.Println("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	subjectMapper := infrastructure.NewEventSubjectMapper()
	eventPublisher := infrastructure.NewNATSEventPublisher(natsClient, subjectMapper)
	if err := eventPublisher.EnsureDomainEventStream(); err != nil {
		return fmt.Errorf("failed to ensure event stream: %w", err)
	}
	eventPublisher.RegisterLocalHandler(events.EventTypeBalanceChange, application.RecordChipFlow)

	eventFeed := infrastructure.NewEventFeedConsumer(natsClient, subjectMapper)
	if err := eventFeed.Start(); err != nil {
		return fmt.Errorf("failed to start event feed: %w", err)
	}
	log.Println("NATS connection established successfully")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNATSTransactionalPublisher(eventPublisher)
	})

	// Initialize Reddit client
	redditClient := reddit.NewClient(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent)

	// Start background workers
	roundWorker := application.NewRoundPoolWorker(uowFactory, redditClient)
	scoreWorker := application.NewScoreRefreshWorker(uowFactory, redditClient)
	marketWorker := application.NewMarketWorker(uowFactory, redditClient)

	stopRoundWorker := roundWorker.Start(ctx)
	stopScoreWorker := scoreWorker.Start(ctx)
	stopMarketWorker := marketWorker.Start(ctx)

	// Start the HTTP API
	server := api.NewServer(uowFactory, roundWorker, marketWorker)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(),
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Wait for context cancellation
	log.Printf("Gamerit is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	stopRoundWorker()
	stopScoreWorker()
	stopMarketWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if err := natsClient.Close(); err != nil {
		log.Printf("Error closing NATS connection: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
