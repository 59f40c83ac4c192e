package events

import (
	"context"
	"time"

	"github.com/Archer110/nexus/internal/repository/postgres"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const eventTypeHeader = "event_type"

type OutboxStore interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*postgres.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

// OutboxPublisher relays events committed with their orders to Kafka. An
// event is marked processed only after the broker acknowledged it, so delivery
// is at least once.
type OutboxPublisher struct {
	repo      OutboxStore
	writer    MessageWriter
	tick      time.Duration
	batchSize int
	log       logrus.FieldLogger
}

func NewOutboxPublisher(repo OutboxStore, writer MessageWriter, tick time.Duration, log logrus.FieldLogger) *OutboxPublisher {
	if tick <= 0 {
		tick = time.Second
	}
	return &OutboxPublisher{
		repo:      repo,
		writer:    writer,
		tick:      tick,
		batchSize: 100,
		log:       log.WithField("component", "outbox_publisher"),
	}
}

func (p *OutboxPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	p.log.WithField("interval", p.tick.String()).Info("outbox publisher started")
	for {
		select {
		case <-ticker.C:
			p.PublishPending(ctx)
		case <-ctx.Done():
			p.log.Info("outbox publisher stopped")
			return
		}
	}
}

// PublishPending sends one batch and returns how many events were published.
// It stops at the first failed write so events keep their order.
func (p *OutboxPublisher) PublishPending(ctx context.Context) int {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.WithError(err).Error("failed to fetch outbox events")
		return 0
	}

	published := 0
	for _, event := range events {
		msg := kafka.Message{
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: eventTypeHeader, Value: []byte(event.EventType)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.WithError(err).WithField("event_id", event.ID).Error("failed to publish event")
			return published
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.WithError(err).WithField("event_id", event.ID).Error("failed to mark event as processed")
			return published
		}
		published++
	}

	if published > 0 {
		p.log.WithField("count", published).Debug("outbox events published")
	}
	return published
}
