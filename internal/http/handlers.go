package http

import (
	"context"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/service"
	"github.com/google/uuid"
)

type CatalogAPI interface {
	Catalog(ctx context.Context, q domain.CatalogQuery) (*service.CatalogPage, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	Facets(ctx context.Context, category string) (*domain.Facets, error)
	AdminCatalog(ctx context.Context, search string, page, perPage int) (*service.CatalogPage, error)
	CreateProduct(ctx context.Context, in service.NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id, field, value string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error)
}

type CartAPI interface {
	List(ctx context.Context, sessionID string) (*domain.CartView, error)
	Add(ctx context.Context, sessionID, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	Increase(ctx context.Context, sessionID, productID string) error
	Decrease(ctx context.Context, sessionID, productID string) error
	Remove(ctx context.Context, sessionID, productID string) error
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutAPI interface {
	Checkout(ctx context.Context, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

type OrderAPI interface {
	OrderDetails(ctx context.Context, id uuid.UUID) (*domain.OrderDetails, error)
	Orders(ctx context.Context, search string) ([]*domain.Order, error)
	RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
	Revenue(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int64, error)
}
