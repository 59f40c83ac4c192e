package events

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Archer110/nexus/internal/repository/postgres"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type MockOutboxStore struct {
	mu        sync.Mutex
	Events    []*postgres.OutboxEvent
	Processed []int64
	GetErr    error
	MarkErr   error
}

func (m *MockOutboxStore) GetUnprocessedEvents(_ context.Context, limit int) ([]*postgres.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	done := map[int64]bool{}
	for _, id := range m.Processed {
		done[id] = true
	}
	var out []*postgres.OutboxEvent
	for _, e := range m.Events {
		if !done[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.Processed = append(m.Processed, id)
	return nil
}

type MockWriter struct {
	mu        sync.Mutex
	Messages  []kafka.Message
	FailAfter int // fail every write once this many succeeded; 0 never fails
}

func (m *MockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAfter > 0 && len(m.Messages) >= m.FailAfter {
		return errors.New("broker unavailable")
	}
	m.Messages = append(m.Messages, msgs...)
	return nil
}

func (m *MockWriter) Close() error { return nil }

// MockReader serves queued messages and then blocks until the context ends.
type MockReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	Committed []kafka.Message
}

func (m *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *MockReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = append(m.Committed, msgs...)
	return nil
}

func (m *MockReader) CommittedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Committed)
}

func (m *MockReader) Close() error { return nil }

type MockClearer struct {
	mu      sync.Mutex
	Cleared []string
	Fails   int
}

func (m *MockClearer) ClearPlaced(_ context.Context, sessionID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fails > 0 {
		m.Fails--
		return errors.New("mongo timeout")
	}
	m.Cleared = append(m.Cleared, sessionID)
	return nil
}

func (m *MockClearer) ClearedSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Cleared...)
}
