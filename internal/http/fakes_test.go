package http

import (
	"context"
	"io"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type FakeCatalog struct {
	LastQuery   domain.CatalogQuery
	LastSearch  string
	LastField   string
	LastValue   string
	LastCreated service.NewProduct
	Products    map[string]*domain.Product
	Err         error
}

func (f *FakeCatalog) Catalog(_ context.Context, q domain.CatalogQuery) (*service.CatalogPage, error) {
	f.LastQuery = q
	if f.Err != nil {
		return nil, f.Err
	}
	var out []*domain.Product
	for _, p := range f.Products {
		out = append(out, p)
	}
	return &service.CatalogPage{Products: out, Total: int64(len(out)), Page: q.Page, PerPage: 9, Pages: 1}, nil
}

func (f *FakeCatalog) Product(_ context.Context, id string) (*domain.Product, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	p, ok := f.Products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *FakeCatalog) Facets(_ context.Context, category string) (*domain.Facets, error) {
	return &domain.Facets{Categories: []string{"tech"}, Specs: map[string][]string{"ram": {"16GB", "8GB"}}}, f.Err
}

func (f *FakeCatalog) AdminCatalog(ctx context.Context, search string, page, perPage int) (*service.CatalogPage, error) {
	f.LastSearch = search
	return f.Catalog(ctx, domain.CatalogQuery{Page: page, PerPage: perPage, Search: search})
}

func (f *FakeCatalog) CreateProduct(_ context.Context, in service.NewProduct) (*domain.Product, error) {
	f.LastCreated = in
	if f.Err != nil {
		return nil, f.Err
	}
	return &domain.Product{ID: "65f0000000000000000000aa", Name: in.Name, Price: in.Price, Stock: in.Stock}, nil
}

func (f *FakeCatalog) UpdateProduct(_ context.Context, id, field, value string) (*domain.Product, error) {
	f.LastField, f.LastValue = field, value
	if f.Err != nil {
		return nil, f.Err
	}
	return &domain.Product{ID: id}, nil
}

func (f *FakeCatalog) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.Products[id]; !ok {
		return domain.ErrProductNotFound
	}
	return nil
}

func (f *FakeCatalog) CountProducts(context.Context) (int64, error) {
	return int64(len(f.Products)), f.Err
}

func (f *FakeCatalog) CategoryBreakdown(context.Context) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Category: "tech", Count: 1}}, f.Err
}

type FakeCarts struct {
	Sessions []string
	Added    map[string]int
	Actions  []string
	Err      error
}

func (f *FakeCarts) record(sessionID, action string) error {
	f.Sessions = append(f.Sessions, sessionID)
	f.Actions = append(f.Actions, action)
	return f.Err
}

func (f *FakeCarts) List(_ context.Context, sessionID string) (*domain.CartView, error) {
	view := &domain.CartView{SessionID: sessionID, Lines: []domain.CartLine{}, Currency: "USD"}
	for id, qty := range f.Added {
		view.Lines = append(view.Lines, domain.CartLine{ProductID: id, Quantity: qty, UnitPrice: 10, Subtotal: float64(10 * qty)})
		view.Total += float64(10 * qty)
	}
	return view, nil
}

func (f *FakeCarts) Add(_ context.Context, sessionID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "must be greater than zero")
	}
	if err := f.record(sessionID, "add"); err != nil {
		return err
	}
	if f.Added == nil {
		f.Added = map[string]int{}
	}
	f.Added[productID] += quantity
	return nil
}

func (f *FakeCarts) UpdateQuantity(_ context.Context, sessionID, productID string, quantity int) error {
	if _, ok := f.Added[productID]; !ok {
		return domain.ErrItemNotFound
	}
	f.Added[productID] = quantity
	return f.record(sessionID, "update")
}

func (f *FakeCarts) Increase(_ context.Context, sessionID, _ string) error {
	return f.record(sessionID, "increase")
}

func (f *FakeCarts) Decrease(_ context.Context, sessionID, _ string) error {
	return f.record(sessionID, "decrease")
}

func (f *FakeCarts) Remove(_ context.Context, sessionID, productID string) error {
	delete(f.Added, productID)
	return f.record(sessionID, "remove")
}

func (f *FakeCarts) Clear(_ context.Context, sessionID string) error {
	f.Added = nil
	return f.record(sessionID, "clear")
}

type FakeCheckout struct {
	LastRequest service.CheckoutRequest
	Result      *service.CheckoutResult
	Err         error
}

func (f *FakeCheckout) Checkout(_ context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error) {
	f.LastRequest = req
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Result.Order.SessionID == "" {
		f.Result.Order.SessionID = req.SessionID
	}
	return f.Result, nil
}

type FakeOrders struct {
	Details    map[uuid.UUID]*domain.OrderDetails
	LastSearch string
	LastStatus string
	LastLimit  int
	Err        error
}

func (f *FakeOrders) OrderDetails(_ context.Context, id uuid.UUID) (*domain.OrderDetails, error) {
	d, ok := f.Details[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return d, nil
}

func (f *FakeOrders) Orders(_ context.Context, search string) ([]*domain.Order, error) {
	f.LastSearch = search
	return []*domain.Order{}, f.Err
}

func (f *FakeOrders) RecentOrders(_ context.Context, limit int) ([]*domain.Order, error) {
	f.LastLimit = limit
	return []*domain.Order{}, f.Err
}

func (f *FakeOrders) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	f.LastStatus = status
	if f.Err != nil {
		return nil, f.Err
	}
	d, ok := f.Details[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o := d.Order
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (f *FakeOrders) Revenue(context.Context) (float64, error) {
	return 1234.5, f.Err
}

func (f *FakeOrders) CountOrders(context.Context) (int64, error) {
	return 3, f.Err
}
