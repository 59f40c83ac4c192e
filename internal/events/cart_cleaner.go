package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type CartClearer interface {
	ClearPlaced(ctx context.Context, sessionID string, placedAt time.Time) error
}

// CartCleaner empties the cart of every session that placed an order. It
// covers checkouts whose own cart clear failed after the order committed.
// Carts modified after the order was placed are kept.
type CartCleaner struct {
	reader   MessageReader
	carts    CartClearer
	attempts int
	backoff  time.Duration
	log      logrus.FieldLogger
}

func NewCartCleaner(reader MessageReader, carts CartClearer, log logrus.FieldLogger) *CartCleaner {
	return &CartCleaner{
		reader:   reader,
		carts:    carts,
		attempts: 3,
		backoff:  500 * time.Millisecond,
		log:      log.WithField("component", "cart_cleaner"),
	}
}

func (c *CartCleaner) Run(ctx context.Context) {
	c.log.Info("cart cleaner started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Info("cart cleaner stopped")
				return
			}
			c.log.WithError(err).Error("failed to read message")
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return
			}
			continue
		}

		if err := c.Handle(ctx, msg); err != nil {
			c.log.WithError(err).WithField("offset", msg.Offset).Error("failed to handle message")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.WithError(err).WithField("offset", msg.Offset).Error("failed to commit message")
		}
	}
}

// Handle clears the cart named by an order.placed message. Other event types
// are ignored.
func (c *CartCleaner) Handle(ctx context.Context, msg kafka.Message) error {
	if t := header(msg, eventTypeHeader); t != "" && t != domain.EventTypeOrderPlaced {
		return nil
	}

	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if event.SessionID == "" {
		return fmt.Errorf("order event %s has no session id", event.OrderID)
	}

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.carts.ClearPlaced(ctx, event.SessionID, event.PlacedAt); err == nil {
			c.log.WithFields(logrus.Fields{
				"order_id":   event.OrderID,
				"session_id": event.SessionID,
			}).Debug("cart cleared after order")
			return nil
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-time.After(c.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("clear cart for order %s: %w", event.OrderID, err)
}
