package infrastructure

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"gamerit/metrics"
)

// EventFeedConsumer tails the domain event stream this service publishes,
// surfacing every envelope as a structured log line and a per-type counter.
// It gives operators a live push feed without standing up a second service.
type EventFeedConsumer struct {
	natsClient    *NATSClient
	subjectMapper *EventSubjectMapper
}

// NewEventFeedConsumer creates a new event feed consumer
func NewEventFeedConsumer(natsClient *NATSClient, subjectMapper *EventSubjectMapper) *EventFeedConsumer {
	return &EventFeedConsumer{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
	}
}

// Start subscribes to every subject the service publishes on. Each
// subscription is durable, so the feed resumes where it left off after a
// restart.
func (c *EventFeedConsumer) Start() error {
	for _, subject := range c.subjectMapper.GetAllSubjects() {
		if err := c.natsClient.Subscribe(subject, c.handleEnvelope); err != nil {
			return fmt.Errorf("failed to subscribe event feed to %s: %w", subject, err)
		}
	}
	return nil
}

// handleEnvelope decodes a delivered envelope and records it. A decode
// failure is returned so the message gets NAKed and redelivered.
func (c *EventFeedConsumer) handleEnvelope(data []byte) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to decode event envelope: %w", err)
	}
	if envelope.EventType == "" {
		return fmt.Errorf("event envelope missing event type")
	}

	metrics.EventFeedTotal.WithLabelValues(envelope.EventType).Inc()
	log.WithFields(log.Fields{
		"eventType": envelope.EventType,
		"eventId":   envelope.EventID,
		"source":    envelope.SourceService,
	}).Info("Domain event observed on feed")
	return nil
}
