package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"gamerit/cmd"
	"gamerit/config"
	"gamerit/database"
	"gamerit/domain/entities"
	"gamerit/domain/interfaces"
	"gamerit/infrastructure"
	"gamerit/repository"
)

func main() {
	// Check for migration subcommands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatal("Migration error:", err)
		}
		return
	}

	// Check for balance adjustment subcommands
	if len(os.Args) > 1 && os.Args[1] == "update-balance" {
		if err := handleBalanceAdjustment(); err != nil {
			log.Fatal("Balance adjustment error:", err)
		}
		return
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: gamerit migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleBalanceAdjustment credits or debits a player directly, for manual
// corrections. Events are suppressed; the history row still records the change.
func handleBalanceAdjustment() error {
	if len(os.Args) < 4 {
		return fmt.Errorf("usage: gamerit update-balance reddit-id amount")
	}
	redditID := os.Args[2]
	delta, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", os.Args[3], err)
	}

	ctx := context.Background()
	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, func() interfaces.TransactionalEventPublisher {
		return infrastructure.NewNATSTransactionalPublisher(infrastructure.NewNoopEventPublisher())
	})
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByRedditID(ctx, redditID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return fmt.Errorf("player %s not found", redditID)
	}

	newBalance, err := uow.PlayerRepository().AdjustBalance(ctx, redditID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	history := &entities.BalanceHistory{
		PlayerID:        redditID,
		BalanceBefore:   player.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    delta,
		TransactionType: entities.TransactionTypeAdminAdjust,
	}
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record adjustment: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	log.Printf("Adjusted %s by %d, new balance %d", redditID, delta, newBalance)
	return nil
}
