package events

import "gamerit/domain/entities"

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypePlayerCreated     EventType = "player_created"
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypeRoundCreated      EventType = "round_created"
	EventTypeRoundSettled      EventType = "round_settled"
	EventTypeStockListed       EventType = "stock_listed"
	EventTypeStockDelisted     EventType = "stock_delisted"
	EventTypeStockPriceUpdated EventType = "stock_price_updated"
	EventTypeTradeExecuted     EventType = "trade_executed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a chip balance change that occurred
type BalanceChangeEvent struct {
	PlayerID        string
	OldBalance      int64
	NewBalance      int64
	ChangeAmount    int64
	TransactionType entities.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// PlayerCreatedEvent represents a new player upserted on first Reddit login
type PlayerCreatedEvent struct {
	PlayerID       string
	Username       string
	InitialBalance int64
}

func (e PlayerCreatedEvent) Type() EventType {
	return EventTypePlayerCreated
}

// BetPlacedEvent represents a bet that was placed on a round
type BetPlacedEvent struct {
	BetID    int64
	PlayerID string
	RoundID  string
	Side     entities.RoundSide
	Amount   int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// RoundCreatedEvent represents a new betting round entering the pool
type RoundCreatedEvent struct {
	RoundID    string
	SubredditA string
	SubredditB string
	PostAID    string
	PostBID    string
}

func (e RoundCreatedEvent) Type() EventType {
	return EventTypeRoundCreated
}

// RoundSettledEvent represents a round that finished and paid out
type RoundSettledEvent struct {
	RoundID     string
	Winner      entities.RoundSide
	BetsSettled int
	TotalPaid   int64
}

func (e RoundSettledEvent) Type() EventType {
	return EventTypeRoundSettled
}

// StockListedEvent represents a new meme stock entering the market
type StockListedEvent struct {
	StockID string
	Keyword string
	Value   int64
}

func (e StockListedEvent) Type() EventType {
	return EventTypeStockListed
}

// StockDelistedEvent represents a stock deactivated on expiry
type StockDelistedEvent struct {
	StockID   string
	Keyword   string
	LastValue int64
}

func (e StockDelistedEvent) Type() EventType {
	return EventTypeStockDelisted
}

// StockPriceUpdatedEvent represents a market-refresh value change
type StockPriceUpdatedEvent struct {
	StockID  string
	Keyword  string
	OldValue int64
	NewValue int64
}

func (e StockPriceUpdatedEvent) Type() EventType {
	return EventTypeStockPriceUpdated
}

// TradeExecutedEvent represents a completed buy or sell of a meme stock
type TradeExecutedEvent struct {
	PlayerID   string
	StockID    string
	Keyword    string
	Side       string // "buy" or "sell"
	Shares     int64
	Chips      int64
	ProfitLoss int64 // only meaningful for sells
}

func (e TradeExecutedEvent) Type() EventType {
	return EventTypeTradeExecuted
}
