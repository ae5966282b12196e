package application

import (
	"context"
	"testing"

	"gamerit/domain/entities"
	"gamerit/domain/events"
	"gamerit/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordChipFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("debits count under the debit direction", func(t *testing.T) {
		counter := metrics.ChipFlow.WithLabelValues("debit", string(entities.TransactionTypeBetPlaced))
		before := testutil.ToFloat64(counter)

		require.NoError(t, RecordChipFlow(ctx, events.BalanceChangeEvent{
			PlayerID:        "t2_abc",
			OldBalance:      1000,
			NewBalance:      950,
			ChangeAmount:    -50,
			TransactionType: entities.TransactionTypeBetPlaced,
		}))

		assert.Equal(t, before+50, testutil.ToFloat64(counter))
	})

	t.Run("credits count under the credit direction", func(t *testing.T) {
		counter := metrics.ChipFlow.WithLabelValues("credit", string(entities.TransactionTypeBetWin))
		before := testutil.ToFloat64(counter)

		require.NoError(t, RecordChipFlow(ctx, events.BalanceChangeEvent{
			PlayerID:        "t2_abc",
			OldBalance:      950,
			NewBalance:      1050,
			ChangeAmount:    100,
			TransactionType: entities.TransactionTypeBetWin,
		}))

		assert.Equal(t, before+100, testutil.ToFloat64(counter))
	})

	t.Run("rejects events of the wrong kind", func(t *testing.T) {
		err := RecordChipFlow(ctx, events.BetPlacedEvent{BetID: 1})
		assert.Error(t, err)
	})
}
