package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

const (
	// MaxDeliveryAttempts is the max number of delivery attempts before discarding
	// After 3 failed attempts, message is discarded - the next event for the
	// same product triggers a full recomputation anyway
	MaxDeliveryAttempts = 3

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

// StreamDefinition describes one JetStream stream and its durable consumer.
type StreamDefinition struct {
	Stream              string
	Subjects            string
	Consumer            string
	Description         string
	ConsumerDescription string
}

// ReviewsStream carries review lifecycle events for the rating worker.
var ReviewsStream = StreamDefinition{
	Stream:              "REVIEWS",
	Subjects:            "reviews.events",
	Consumer:            "rating-worker",
	Description:         "Review events stream for rating calculation",
	ConsumerDescription: "Rating worker consumer for processing review events",
}

// InventoryStream carries stock adjustment events for the stock notifier.
var InventoryStream = StreamDefinition{
	Stream:              "INVENTORY",
	Subjects:            "inventory.adjusted",
	Consumer:            "stock-notifier",
	Description:         "Stock adjustment events stream for low stock alerts",
	ConsumerDescription: "Stock notifier consumer for low stock detection",
}

// StreamConfig holds the JetStream stream configuration
type StreamConfig struct {
	js     nats.JetStreamContext
	def    StreamDefinition
	logger *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, def StreamDefinition, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:     js,
		def:    def,
		logger: log,
	}
}

// generateExponentialBackoff creates a backoff schedule for NATS redeliveries
// Pattern: 1s, 2s, 4s, 8s, ... (2^n seconds)
// MaxDeliver N requires N-1 backoff durations (first delivery is immediate)
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureStream creates or updates the JetStream stream
// Stream configuration:
// - Retention: Work queue (messages deleted after ack or max deliver)
// - Storage: File (survives restarts)
// - Replicas: 1 (single node)
// - MaxAge: 24 hours (stale events are not useful for recalculation)
func (s *StreamConfig) EnsureStream() error {
	stream, err := s.js.StreamInfo(s.def.Stream)

	if errors.Is(err, nats.ErrStreamNotFound) {
		// Create new stream
		s.logger.WithFields(map[string]any{
			"stream":   s.def.Stream,
			"subjects": s.def.Subjects,
		}).Info("Creating JetStream stream")

		_, err = s.js.AddStream(&nats.StreamConfig{
			Name:        s.def.Stream,
			Subjects:    []string{s.def.Subjects},
			Retention:   nats.WorkQueuePolicy, // Messages deleted after ack
			Storage:     nats.FileStorage,     // Persisted to disk
			Replicas:    1,
			MaxAge:      24 * time.Hour,  // Keep messages for 24 hours max
			Discard:     nats.DiscardOld, // Discard old messages when limits reached
			Description: s.def.Description,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	// Stream exists
	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates or updates the durable consumer for the stream
// Consumer configuration:
// - Durable: Survives worker restarts
// - AckExplicit: Worker must explicitly acknowledge messages
// - MaxDeliver: 3 attempts then discard
// - AckWait: 30 seconds to process and ack
// - BackOff: Exponential backoff between retries (dynamically generated)
//
// Note: Messages that fail after 3 attempts are discarded, not sent to DLQ.
// This is acceptable because both consumers work off database state - the
// next event for the same product will carry current values.
func (s *StreamConfig) EnsureConsumer() error {
	consumerInfo, err := s.js.ConsumerInfo(s.def.Stream, s.def.Consumer)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		// Create new consumer
		s.logger.WithFields(map[string]any{
			"stream":   s.def.Stream,
			"consumer": s.def.Consumer,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(s.def.Stream, &nats.ConsumerConfig{
			Durable:       s.def.Consumer,
			AckPolicy:     nats.AckExplicitPolicy, // Require explicit ack
			AckWait:       AckWait,
			MaxDeliver:    MaxDeliveryAttempts,
			FilterSubject: s.def.Subjects,
			BackOff:       generateExponentialBackoff(MaxDeliveryAttempts),
			Description:   s.def.ConsumerDescription,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		s.logger.Info("JetStream consumer created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	// Consumer exists
	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
