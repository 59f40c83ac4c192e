package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// checkoutNamespace scopes idempotency keys when deriving checkout ids.
var checkoutNamespace = uuid.MustParse("6f1c1d0e-6a53-4b5e-9f43-5c1f3f0c2a7e")

type CheckoutRequest struct {
	SessionID      string
	IdempotencyKey string
	Customer       domain.Customer
}

type CheckoutResult struct {
	Order *domain.Order
	// Replayed is set when the checkout had already been completed and the
	// existing order is returned.
	Replayed bool
}

type CheckoutService struct {
	carts    *CartService
	products ProductLookup
	orders   OrderStore
	validate *validator.Validate
	currency string
	log      logrus.FieldLogger
}

func NewCheckoutService(carts *CartService, products ProductLookup, orders OrderStore, currency string, log logrus.FieldLogger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		products: products,
		orders:   orders,
		validate: newValidator(),
		currency: currency,
		log:      log,
	}
}

// Checkout turns the session's cart into an order. Prices, names and specs are
// copied from the catalog as they are now. Stock is checked and decremented in
// the same transaction that writes the order; on any failure the cart is left
// as it was. The cart is cleared only after the order is committed.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	log := logger.FromContext(ctx, s.log).WithField("session_id", req.SessionID)

	if err := s.validate.Struct(req.Customer); err != nil {
		return nil, validationError(err)
	}

	checkoutID := s.checkoutID(req)
	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByCheckoutID(ctx, checkoutID)
		if err == nil {
			log.WithField("order_id", existing.ID).Info("duplicate checkout, returning existing order")
			return &CheckoutResult{Order: existing, Replayed: true}, nil
		}
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, fmt.Errorf("check idempotency: %w", err)
		}
	}

	cart, err := s.carts.loadFresh(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	items, err := s.snapshot(ctx, cart)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:         uuid.New(),
		CheckoutID: checkoutID,
		SessionID:  req.SessionID,
		Customer:   req.Customer,
		Currency:   s.currency,
		Status:     domain.OrderStatusCreated,
		Items:      items,
		CreatedAt:  time.Now().UTC(),
	}
	order.TotalAmount = order.ComputeTotal()

	err = s.orders.CreateOrder(ctx, order)
	switch {
	case errors.Is(err, domain.ErrDuplicateCheckout):
		existing, getErr := s.orders.GetOrderByCheckoutID(ctx, checkoutID)
		if getErr != nil {
			return nil, fmt.Errorf("load existing order: %w", getErr)
		}
		log.WithField("order_id", existing.ID).Info("concurrent duplicate checkout, returning existing order")
		return &CheckoutResult{Order: existing, Replayed: true}, nil
	case domain.IsOutOfStock(err):
		log.WithError(err).Info("checkout rejected")
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("create order: %w", err)
	}

	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"items":    len(order.Items),
	}).Info("order placed")

	// The order.placed consumer clears the cart again if this fails.
	if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		log.WithError(err).WithField("order_id", order.ID).Error("failed to clear cart after checkout")
	}

	return &CheckoutResult{Order: order}, nil
}

func (s *CheckoutService) snapshot(ctx context.Context, cart *domain.Cart) ([]domain.OrderItem, error) {
	products, err := s.products.GetProducts(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, domain.NewValidationError("cart",
				fmt.Sprintf("product %s is no longer available, remove it to continue", item.ProductID))
		}
		items = append(items, domain.OrderItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: domain.RoundMoney(p.Price),
			Specs:           p.Specs,
		})
	}
	return items, nil
}

// checkoutID derives a stable id from the idempotency key so retries of the
// same submission map to the same order. Without a key every call is new.
func (s *CheckoutService) checkoutID(req CheckoutRequest) uuid.UUID {
	if req.IdempotencyKey == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(checkoutNamespace, []byte(req.SessionID+"\x00"+req.IdempotencyKey))
}
