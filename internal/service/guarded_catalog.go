package service

import (
	"context"
	"errors"

	"github.com/Archer110/nexus/internal/breaker"
	"github.com/Archer110/nexus/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// GuardedCatalog puts catalog reads behind a circuit breaker. A missing product
// is an answer, not a failure, and neither it nor a cancelled caller counts
// against the breaker.
type GuardedCatalog struct {
	lookup ProductLookup
	one    *gobreaker.CircuitBreaker[*domain.Product]
	many   *gobreaker.CircuitBreaker[[]*domain.Product]
}

func NewGuardedCatalog(lookup ProductLookup, s breaker.Settings, log logrus.FieldLogger) *GuardedCatalog {
	notFound := func(err error) bool {
		return errors.Is(err, domain.ErrProductNotFound) || breaker.Cancelled(err)
	}
	return &GuardedCatalog{
		lookup: lookup,
		one:    breaker.New[*domain.Product](s, log, notFound),
		many:   breaker.New[[]*domain.Product](s, log, breaker.Cancelled),
	}
}

func (g *GuardedCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return g.one.Execute(func() (*domain.Product, error) {
		return g.lookup.GetProduct(ctx, id)
	})
}

func (g *GuardedCatalog) GetProducts(ctx context.Context, ids []string) ([]*domain.Product, error) {
	return g.many.Execute(func() ([]*domain.Product, error) {
		return g.lookup.GetProducts(ctx, ids)
	})
}
