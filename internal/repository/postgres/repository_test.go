package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, dsn)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(db, "./migrations"))

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func newTestOrder(items ...domain.OrderItem) *domain.Order {
	order := &domain.Order{
		ID:         uuid.New(),
		CheckoutID: uuid.New(),
		SessionID:  "session-1",
		Customer: domain.Customer{
			Name:    "Ada Lovelace",
			Email:   "ada@example.com",
			Address: "12 Analytical St",
			City:    "London",
			Zip:     "N1 9GU",
		},
		Currency: "USD",
		Status:   domain.OrderStatusCreated,
		Items:    items,
	}
	order.TotalAmount = order.ComputeTotal()
	return order
}
