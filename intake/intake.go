// Package intake consumes build event notifications from NATS and appends
// them to the store. Repeated deliveries of the same (release, event name)
// pair are acknowledged without being stored again.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relenghq/shipit/model"
	"github.com/relenghq/shipit/store"
)

// StreamName is the JetStream stream holding raw event notifications.
const StreamName = "SHIPIT_INTAKE"

var (
	eventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipit_intake_events_received_total",
		Help: "Build event notifications received from NATS.",
	})
	eventsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipit_intake_events_stored_total",
		Help: "Build events stored after dedup.",
	})
	eventsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipit_intake_events_duplicate_total",
		Help: "Build events dropped as duplicates.",
	})
	eventsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shipit_intake_events_rejected_total",
		Help: "Build events rejected as malformed.",
	})
)

// Config holds the intake consumer settings.
type Config struct {
	// Subject is the NATS subject pattern events arrive on.
	Subject string

	// ConsumerName is the durable consumer name.
	ConsumerName string
}

// Consumer reads build events from a JetStream stream into the store.
type Consumer struct {
	config Config
	js     jetstream.JetStream
	store  *store.Store
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	consumer jetstream.Consumer
}

// NewConsumer creates an intake consumer. The store receives every accepted
// event.
func NewConsumer(cfg Config, js jetstream.JetStream, st *store.Store, logger *slog.Logger) *Consumer {
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "shipit-intake"
	}
	return &Consumer{
		config: cfg,
		js:     js,
		store:  st,
		logger: logger.With("component", "intake"),
	}
}

// Start creates the stream and durable consumer if needed and begins
// consuming in the background.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("intake already running")
	}
	c.running = true

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	stream, err := c.js.CreateOrUpdateStream(subCtx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{c.config.Subject},
	})
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("create stream %s: %w", StreamName, err)
	}

	consumer, err := stream.CreateOrUpdateConsumer(subCtx, jetstream.ConsumerConfig{
		Durable:    c.config.ConsumerName,
		AckPolicy:  jetstream.AckExplicitPolicy,
		AckWait:    30 * time.Second,
		MaxDeliver: 5,
	})
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("create consumer: %w", err)
	}
	c.consumer = consumer

	go c.consumeLoop(subCtx)

	c.logger.Info("Intake started",
		"stream", StreamName,
		"consumer", c.config.ConsumerName,
		"subject", c.config.Subject)
	return nil
}

// Stop halts the consume loop.
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.logger.Info("Intake stopped")
}

func (c *Consumer) rollbackStart(cancel context.CancelFunc) {
	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
	cancel()
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("Fetch timeout or error", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg) {
	if ctx.Err() != nil {
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message during shutdown", "error", err)
		}
		return
	}

	eventsReceived.Inc()
	ingestID := uuid.NewString()

	event, err := Decode(msg.Data())
	if err != nil {
		eventsRejected.Inc()
		c.logger.Error("Rejected malformed event",
			"ingest_id", ingestID,
			"error", err)
		// Malformed payloads never become valid; drop them.
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		return
	}

	exists, err := c.store.HasEvent(ctx, event)
	if err != nil {
		c.logger.Error("Dedup lookup failed",
			"ingest_id", ingestID,
			"release", event.ReleaseName,
			"error", err)
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message", "error", err)
		}
		return
	}
	if exists {
		eventsDuplicate.Inc()
		c.logger.Debug("Dropped duplicate event",
			"ingest_id", ingestID,
			"release", event.ReleaseName,
			"event", event.EventName)
		if err := msg.Ack(); err != nil {
			c.logger.Warn("Failed to ACK message", "error", err)
		}
		return
	}

	if err := c.store.PutEvent(ctx, event); err != nil {
		c.logger.Error("Failed to store event",
			"ingest_id", ingestID,
			"release", event.ReleaseName,
			"error", err)
		if err := msg.Nak(); err != nil {
			c.logger.Warn("Failed to NAK message", "error", err)
		}
		return
	}

	eventsStored.Inc()
	c.logger.Info("Stored build event",
		"ingest_id", ingestID,
		"release", event.ReleaseName,
		"event", event.EventName,
		"group", event.Group)
	if err := msg.Ack(); err != nil {
		c.logger.Warn("Failed to ACK message", "error", err)
	}
}

// Decode parses a raw notification payload into a BuildEvent. The release
// name and event name are required; a missing Sent timestamp is stamped with
// the current time.
func Decode(data []byte) (model.BuildEvent, error) {
	var event model.BuildEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return model.BuildEvent{}, fmt.Errorf("parse event: %w", err)
	}
	if event.ReleaseName == "" {
		return model.BuildEvent{}, fmt.Errorf("event missing release name")
	}
	if event.EventName == "" {
		return model.BuildEvent{}, fmt.Errorf("event missing event name")
	}
	if event.Sent.IsZero() {
		event.Sent = time.Now().UTC()
	}
	return event, nil
}
