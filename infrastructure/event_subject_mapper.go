package infrastructure

import (
	"fmt"

	"gamerit/domain/events"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return "players.balance_changed"
	case events.EventTypePlayerCreated:
		return "players.created"
	case events.EventTypeBetPlaced:
		return "betting.placed"
	case events.EventTypeRoundCreated:
		return "rounds.created"
	case events.EventTypeRoundSettled:
		return "rounds.settled"
	case events.EventTypeStockListed:
		return "stocks.listed"
	case events.EventTypeStockDelisted:
		return "stocks.delisted"
	case events.EventTypeStockPriceUpdated:
		return "stocks.price_updated"
	case events.EventTypeTradeExecuted:
		return "trades.executed"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"players.balance_changed",
		"players.created",
		"betting.placed",
		"rounds.created",
		"rounds.settled",
		"stocks.listed",
		"stocks.delisted",
		"stocks.price_updated",
		"trades.executed",
	}
}
