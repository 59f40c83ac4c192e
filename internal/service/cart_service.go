package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Archer110/nexus/internal/cache"
	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const unavailableName = "Unavailable product"

type CartService struct {
	repo     CartStore
	cache    cache.CartCache
	products ProductLookup
	currency string
	log      logrus.FieldLogger
	sfg      singleflight.Group
}

func NewCartService(repo CartStore, c cache.CartCache, products ProductLookup, currency string, log logrus.FieldLogger) *CartService {
	return &CartService{
		repo:     repo,
		cache:    c,
		products: products,
		currency: currency,
		log:      log,
	}
}

// GetCart returns the stored cart, or an empty one when the session has none.
// Concurrent misses for the same session share one store read.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx, s.log).WithError(err).Warn("cart cache get failed")
		}

		cart, err = s.repo.GetCart(ctx, sessionID)
		if errors.Is(err, domain.ErrCartNotFound) {
			return emptyCart(sessionID), nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, sessionID, cart); err != nil {
			logger.FromContext(ctx, s.log).WithError(err).Warn("cart cache set failed")
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// loadFresh reads the cart from the store, bypassing the cache. Checkout
// orders exactly what this returns.
func (s *CartService) loadFresh(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return emptyCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func emptyCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}
}

// Add puts quantity units of a catalog product in the cart, on top of whatever
// the cart already holds for it.
func (s *CartService) Add(ctx context.Context, sessionID, productID string, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}

	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return err
	}
	if item := findItem(cart, productID); item != nil {
		if err := validateQuantity(item.Quantity + quantity); err != nil {
			return err
		}
	}

	if err := s.repo.AddItem(ctx, sessionID, productID, quantity); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	s.invalidate(ctx, sessionID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}

	if err := s.repo.UpdateItemQuantity(ctx, sessionID, productID, quantity); err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return err
		}
		return fmt.Errorf("update cart item: %w", err)
	}

	s.invalidate(ctx, sessionID)
	return nil
}

func (s *CartService) Increase(ctx context.Context, sessionID, productID string) error {
	item, err := s.item(ctx, sessionID, productID)
	if err != nil {
		return err
	}
	return s.UpdateQuantity(ctx, sessionID, productID, item.Quantity+1)
}

// Decrease lowers the quantity by one but never below one; use Remove to drop
// the line.
func (s *CartService) Decrease(ctx context.Context, sessionID, productID string) error {
	item, err := s.item(ctx, sessionID, productID)
	if err != nil {
		return err
	}
	if item.Quantity <= 1 {
		return nil
	}
	return s.UpdateQuantity(ctx, sessionID, productID, item.Quantity-1)
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID string) error {
	err := s.repo.RemoveItem(ctx, sessionID, productID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fmt.Errorf("remove cart item: %w", err)
	}

	s.invalidate(ctx, sessionID)
	return nil
}

// Clear empties the cart. Clearing an empty cart is not an error.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteCart(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.invalidate(ctx, sessionID)
	return nil
}

// ClearPlaced empties the cart an order was placed from, unless the shopper
// has changed it since placedAt.
func (s *CartService) ClearPlaced(ctx context.Context, sessionID string, placedAt time.Time) error {
	deleted, err := s.repo.DeleteCartUnchangedSince(ctx, sessionID, placedAt)
	if err != nil {
		return fmt.Errorf("clear placed cart: %w", err)
	}

	if deleted {
		s.invalidate(ctx, sessionID)
	}
	return nil
}

// List prices every line against the current catalog. Lines whose product is
// gone are flagged unavailable and left out of the total.
func (s *CartService) List(ctx context.Context, sessionID string) (*domain.CartView, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{
		SessionID: sessionID,
		Lines:     make([]domain.CartLine, 0, len(cart.Items)),
		Currency:  s.currency,
	}
	if cart.IsEmpty() {
		return view, nil
	}

	products, err := s.products.GetProducts(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total float64
	for _, item := range cart.Items {
		line := domain.CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		p, ok := byID[item.ProductID]
		if !ok {
			line.Name = unavailableName
			line.Unavailable = true
			view.Lines = append(view.Lines, line)
			continue
		}
		line.Name = p.Name
		line.ImageURL = p.ImageURL
		line.UnitPrice = p.Price
		line.Subtotal = domain.RoundMoney(p.Price * float64(item.Quantity))
		total += line.Subtotal
		view.Lines = append(view.Lines, line)
	}
	view.Total = domain.RoundMoney(total)

	return view, nil
}

func (s *CartService) Total(ctx context.Context, sessionID string) (float64, error) {
	view, err := s.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return view.Total, nil
}

func (s *CartService) ensureProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return domain.NewValidationError("product_id", "value missing")
	}
	_, err := s.products.GetProduct(ctx, productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		return domain.NewValidationError("product_id", "product does not exist")
	}
	if err != nil {
		return fmt.Errorf("look up product: %w", err)
	}
	return nil
}

func (s *CartService) item(ctx context.Context, sessionID, productID string) (*domain.CartItem, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, productID)
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func findItem(cart *domain.Cart, productID string) *domain.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

func (s *CartService) invalidate(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		logger.FromContext(ctx, s.log).WithError(err).Warn("cart cache invalidate failed")
	}
}
