// Package seed fills the catalog, inventory and order history with generated
// data for local development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ListProducts(ctx context.Context, q domain.CatalogQuery) ([]*domain.Product, int64, error)
}

type StockStore interface {
	SetStock(ctx context.Context, productID string, stock int) error
}

type OrderImporter interface {
	ImportOrder(ctx context.Context, order *domain.Order) error
}

// orderSourceSize bounds how many catalog products historical orders draw from.
const orderSourceSize = 100

var statusWeights = []struct {
	status domain.OrderStatus
	weight int
}{
	{domain.OrderStatusCreated, 10},
	{domain.OrderStatusPaid, 20},
	{domain.OrderStatusShipped, 30},
	{domain.OrderStatusFulfilled, 30},
	{domain.OrderStatusCancelled, 10},
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Radia", "Edsger"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Perlman", "Dijkstra"}
	streets    = []string{"Analytical Way", "Compiler Lane", "Kernel Street", "Lambda Road", "Pointer Avenue"}
	cities     = []string{"London", "Berlin", "Lisbon", "Toronto", "Austin", "Melbourne"}
)

type Seeder struct {
	rnd      *rand.Rand
	currency string
	log      logrus.FieldLogger
}

func NewSeeder(seed int64, currency string, log logrus.FieldLogger) *Seeder {
	return &Seeder{
		rnd:      rand.New(rand.NewSource(seed)),
		currency: currency,
		log:      log,
	}
}

// SeedProducts inserts n generated products and sets their stock.
func (s *Seeder) SeedProducts(ctx context.Context, products ProductStore, stock StockStore, n int) (int, error) {
	for i := 0; i < n; i++ {
		p := s.Product()
		if err := products.CreateProduct(ctx, p); err != nil {
			return i, fmt.Errorf("create product %d: %w", i, err)
		}
		if err := stock.SetStock(ctx, p.ID, s.Stock()); err != nil {
			return i, fmt.Errorf("set stock for %s: %w", p.ID, err)
		}
		if i > 0 && i%200 == 0 {
			s.log.WithField("count", i).Info("seeding products")
		}
	}
	s.log.WithField("count", n).Info("products seeded")
	return n, nil
}

// SeedOrders imports n historical orders built from existing catalog
// products. Inventory is not touched.
func (s *Seeder) SeedOrders(ctx context.Context, products ProductStore, orders OrderImporter, n int) (int, error) {
	source, _, err := products.ListProducts(ctx, domain.CatalogQuery{Page: 1, PerPage: orderSourceSize})
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	if len(source) == 0 {
		return 0, errors.New("no products in catalog, run seed-products first")
	}

	for i := 0; i < n; i++ {
		if err := orders.ImportOrder(ctx, s.Order(source)); err != nil {
			return i, fmt.Errorf("import order %d: %w", i, err)
		}
	}
	s.log.WithField("count", n).Info("orders seeded")
	return n, nil
}

// Order builds a historical order of one to five distinct products from
// source, dated within the last 30 days.
func (s *Seeder) Order(source []*domain.Product) *domain.Order {
	count := between(s.rnd, 1, 5)
	if count > len(source) {
		count = len(source)
	}

	items := make([]domain.OrderItem, 0, count)
	for _, idx := range s.rnd.Perm(len(source))[:count] {
		p := source[idx]
		items = append(items, domain.OrderItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        between(s.rnd, 1, 3),
			PriceAtPurchase: p.Price,
			Specs:           p.Specs,
		})
	}

	first, last := pick(s.rnd, firstNames...), pick(s.rnd, lastNames...)
	placed := time.Now().UTC().
		AddDate(0, 0, -s.rnd.Intn(31)).
		Add(-time.Duration(s.rnd.Intn(24*60)) * time.Minute)

	order := &domain.Order{
		ID:         uuid.New(),
		CheckoutID: uuid.New(),
		SessionID:  uuid.NewString(),
		Customer: domain.Customer{
			Name:    first + " " + last,
			Email:   fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), s.rnd.Intn(100)),
			Address: fmt.Sprintf("%d %s", between(s.rnd, 1, 250), pick(s.rnd, streets...)),
			City:    pick(s.rnd, cities...),
			Zip:     fmt.Sprintf("%05d", s.rnd.Intn(100000)),
		},
		Currency:  s.currency,
		Status:    s.status(),
		Items:     items,
		CreatedAt: placed,
	}
	order.TotalAmount = order.ComputeTotal()
	return order
}

func (s *Seeder) status() domain.OrderStatus {
	total := 0
	for _, w := range statusWeights {
		total += w.weight
	}
	n := s.rnd.Intn(total)
	for _, w := range statusWeights {
		if n < w.weight {
			return w.status
		}
		n -= w.weight
	}
	return domain.OrderStatusCreated
}
