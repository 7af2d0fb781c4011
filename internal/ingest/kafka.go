// Package ingest feeds externally produced conversation exchanges
// into the conversation log that auto-learning mines.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/chat-brain/backend/internal/knowledge"
	"github.com/chat-brain/backend/internal/storage"
)

// ExchangeEvent is the wire format of one conversation turn published
// by the chat delivery side.
type ExchangeEvent struct {
	Scope      string    `json:"bot_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	OccurredAt time.Time `json:"occurred_at,omitempty"`
}

// Consumer reads exchange events from a Kafka topic and appends them
// to the conversation log.
type Consumer struct {
	reader *kafka.Reader
	convo  storage.ConversationLog
	logger *logrus.Entry
}

// NewConsumer creates a consumer for the given brokers and topic.
func NewConsumer(brokers []string, topic, groupID string, convo storage.ConversationLog, logger *logrus.Entry) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 1e6,
	})
	return &Consumer{
		reader: reader,
		convo:  convo,
		logger: logger,
	}
}

// Run consumes until the context is cancelled or the reader closes.
// Malformed events are logged and dropped.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var event ExchangeEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.WithError(err).Warn("Dropping malformed exchange event")
			continue
		}
		if event.Question == "" || event.Answer == "" {
			c.logger.Warn("Dropping exchange event without question or answer")
			continue
		}

		occurredAt := event.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = msg.Time
		}
		ex := knowledge.Exchange{
			Question:   event.Question,
			Answer:     event.Answer,
			OccurredAt: occurredAt,
		}
		if err := c.convo.AppendExchange(ctx, event.Scope, ex); err != nil {
			c.logger.WithError(err).Error("Failed to record exchange")
		}
	}
}

// Close closes the underlying Kafka reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
