package infrastructure

import (
	"encoding/json"
	"testing"
	"time"

	"gamerit/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFeedConsumer_HandleEnvelope(t *testing.T) {
	consumer := NewEventFeedConsumer(nil, NewEventSubjectMapper())

	t.Run("counts a well-formed envelope", func(t *testing.T) {
		envelope := EventEnvelope{
			EventID:       "evt-1",
			EventType:     "bet_placed",
			Timestamp:     time.Now().UTC(),
			SourceService: "gamerit",
			Payload:       json.RawMessage(`{"BetID":1}`),
		}
		data, err := json.Marshal(envelope)
		require.NoError(t, err)

		before := testutil.ToFloat64(metrics.EventFeedTotal.WithLabelValues("bet_placed"))
		require.NoError(t, consumer.handleEnvelope(data))
		after := testutil.ToFloat64(metrics.EventFeedTotal.WithLabelValues("bet_placed"))
		assert.Equal(t, before+1, after)
	})

	t.Run("rejects garbage so the message is redelivered", func(t *testing.T) {
		err := consumer.handleEnvelope([]byte("not json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode")
	})

	t.Run("rejects an envelope without a type", func(t *testing.T) {
		data, err := json.Marshal(EventEnvelope{EventID: "evt-2"})
		require.NoError(t, err)

		assert.Error(t, consumer.handleEnvelope(data))
	})
}
