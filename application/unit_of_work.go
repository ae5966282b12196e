package application

import (
	"context"

	"gamerit/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	PlayerRepository() interfaces.PlayerRepository
	RoundRepository() interfaces.RoundRepository
	BetRepository() interfaces.BetRepository
	StockRepository() interfaces.StockRepository
	PortfolioRepository() interfaces.PortfolioRepository
	BalanceHistoryRepository() interfaces.BalanceHistoryRepository
	JobLockRepository() interfaces.JobLockRepository

	// EventBus returns a publisher whose events are buffered until commit
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
