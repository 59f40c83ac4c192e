package service

import (
	"context"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/google/uuid"
)

// ProductLookup is the read side of the catalog used by cart and checkout.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProducts(ctx context.Context, ids []string) ([]*domain.Product, error)
}

type CatalogStore interface {
	ProductLookup
	ListProducts(ctx context.Context, q domain.CatalogQuery) ([]*domain.Product, int64, error)
	Categories(ctx context.Context) ([]string, error)
	SpecFacets(ctx context.Context, category string) (map[string][]string, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdatePrice(ctx context.Context, id string, price float64) error
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)
	CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error)
}

type InventoryStore interface {
	GetStock(ctx context.Context, productIDs []string) (map[string]int, error)
	SetStock(ctx context.Context, productID string, stock int) error
	DeleteStock(ctx context.Context, productID string) error
}

type CartStore interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, productID string, quantity int) error
	UpdateItemQuantity(ctx context.Context, sessionID, productID string, quantity int) error
	RemoveItem(ctx context.Context, sessionID, productID string) error
	DeleteCart(ctx context.Context, sessionID string) error
	DeleteCartUnchangedSince(ctx context.Context, sessionID string, since time.Time) (bool, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*domain.Order, error)
	StatusHistory(ctx context.Context, id uuid.UUID) ([]domain.StatusChange, error)
	ListOrders(ctx context.Context, search string, limit int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	TotalRevenue(ctx context.Context) (float64, error)
	CountOrders(ctx context.Context) (int64, error)
}
