package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Archer110/nexus/internal/cache"
	"github.com/Archer110/nexus/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// MockCartStore is an in-memory CartStore.
type MockCartStore struct {
	mu       sync.Mutex
	carts    map[string]*domain.Cart
	GetCalls int
	Err      error
}

func NewMockCartStore() *MockCartStore {
	return &MockCartStore{carts: map[string]*domain.Cart{}}
}

func (m *MockCartStore) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, domain.ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (m *MockCartStore) AddItem(_ context.Context, sessionID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		cart = &domain.Cart{SessionID: sessionID, CreatedAt: time.Now()}
		m.carts[sessionID] = cart
	}
	cart.UpdatedAt = time.Now()
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, domain.CartItem{ProductID: productID, Quantity: quantity, AddedAt: time.Now()})
	return nil
}

func (m *MockCartStore) UpdateItemQuantity(_ context.Context, sessionID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return domain.ErrItemNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrItemNotFound
}

func (m *MockCartStore) RemoveItem(_ context.Context, sessionID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return domain.ErrCartNotFound
	}
	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items
	return nil
}

func (m *MockCartStore) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.carts[sessionID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}

func (m *MockCartStore) DeleteCartUnchangedSince(_ context.Context, sessionID string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	cart, ok := m.carts[sessionID]
	if !ok || cart.UpdatedAt.After(since) {
		return false, nil
	}
	delete(m.carts, sessionID)
	return true, nil
}

// MockCache is an in-memory cache.CartCache.
type MockCache struct {
	mu      sync.Mutex
	data    map[string]*domain.Cart
	Deletes int
	GetErr  error
}

func NewMockCache() *MockCache {
	return &MockCache{data: map[string]*domain.Cart{}}
}

func (m *MockCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cart, ok := m.data[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *MockCache) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[sessionID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.data, sessionID)
	return nil
}

func (m *MockCache) Has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[sessionID]
	return ok
}

// MockCatalog implements CatalogStore over a map.
type MockCatalog struct {
	mu       sync.Mutex
	Products map[string]*domain.Product
	Err      error
	nextID   int
}

func NewMockCatalog(products ...*domain.Product) *MockCatalog {
	m := &MockCatalog{Products: map[string]*domain.Product{}}
	for _, p := range products {
		m.Products[p.ID] = p
	}
	return m
}

func (m *MockCatalog) copyOf(p *domain.Product) *domain.Product {
	cp := *p
	return &cp
}

func (m *MockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return m.copyOf(p), nil
}

func (m *MockCatalog) GetProducts(_ context.Context, ids []string) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.Product
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out = append(out, m.copyOf(p))
		}
	}
	return out, nil
}

func (m *MockCatalog) ListProducts(_ context.Context, q domain.CatalogQuery) ([]*domain.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	var all []*domain.Product
	for _, p := range m.Products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		all = append(all, m.copyOf(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := int(q.Skip())
	if start > len(all) {
		start = len(all)
	}
	end := start + q.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *MockCatalog) Categories(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, p := range m.Products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockCatalog) SpecFacets(_ context.Context, category string) (map[string][]string, error) {
	return map[string][]string{"ram": {"16GB", "8GB"}}, nil
}

func (m *MockCatalog) CreateProduct(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.nextID++
	p.ID = fmt.Sprintf("%024x", m.nextID)
	p.CreatedAt = time.Now()
	m.Products[p.ID] = m.copyOf(p)
	return nil
}

func (m *MockCatalog) UpdatePrice(_ context.Context, id string, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Price = price
	return nil
}

func (m *MockCatalog) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.Products, id)
	return nil
}

func (m *MockCatalog) CountProducts(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.Products)), nil
}

func (m *MockCatalog) CategoryBreakdown(_ context.Context) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "tech", Count: 2}}, nil
}

// MockInventory implements InventoryStore over a map.
type MockInventory struct {
	mu     sync.Mutex
	Stock  map[string]int
	SetErr error
}

func NewMockInventory() *MockInventory {
	return &MockInventory{Stock: map[string]int{}}
}

func (m *MockInventory) GetStock(_ context.Context, ids []string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for _, id := range ids {
		if n, ok := m.Stock[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *MockInventory) SetStock(_ context.Context, id string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Stock[id] = stock
	return nil
}

func (m *MockInventory) DeleteStock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Stock, id)
	return nil
}

// MockOrderStore keeps orders in memory and enforces checkout id uniqueness.
type MockOrderStore struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]*domain.Order
	history     map[uuid.UUID][]domain.StatusChange
	CreateErr   error
	CreateCalls int
	ListSearch  string
	ListLimit   int
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:  map[uuid.UUID]*domain.Order{},
		history: map[uuid.UUID][]domain.StatusChange{},
	}
}

func (m *MockOrderStore) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, o := range m.orders {
		if o.CheckoutID == order.CheckoutID {
			return domain.ErrDuplicateCheckout
		}
	}
	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	m.history[order.ID] = []domain.StatusChange{{To: order.Status, ChangedAt: order.CreatedAt}}
	return nil
}

func (m *MockOrderStore) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) GetOrderByCheckoutID(_ context.Context, checkoutID uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.CheckoutID == checkoutID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderStore) StatusHistory(_ context.Context, id uuid.UUID) ([]domain.StatusChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[id], nil
}

func (m *MockOrderStore) ListOrders(_ context.Context, search string, limit int) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListSearch = search
	m.ListLimit = limit
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *MockOrderStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if !domain.CanTransitionTo(o.Status, status) {
		return nil, domain.ErrIllegalTransition
	}
	from := o.Status
	o.Status = status
	m.history[id] = append(m.history[id], domain.StatusChange{From: &from, To: status, ChangedAt: time.Now()})
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) TotalRevenue(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, o := range m.orders {
		if o.Status != domain.OrderStatusCancelled {
			total += o.TotalAmount
		}
	}
	return total, nil
}

func (m *MockOrderStore) CountOrders(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}
