package application

import (
	"context"
	"fmt"

	"gamerit/domain/events"
	"gamerit/metrics"
)

// RecordChipFlow feeds balance change events into the chip flow counters.
// Registered as a local handler so every ledger write is counted in-process
// regardless of which service path produced it.
func RecordChipFlow(ctx context.Context, event events.Event) error {
	change, ok := event.(events.BalanceChangeEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s for chip flow handler", event.Type())
	}

	direction := "credit"
	amount := change.ChangeAmount
	if amount < 0 {
		direction = "debit"
		amount = -amount
	}
	metrics.ChipFlow.WithLabelValues(direction, string(change.TransactionType)).Add(float64(amount))
	return nil
}
