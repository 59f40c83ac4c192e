package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const archivedName = "Archived Product"

type OrderService struct {
	orders   OrderStore
	products ProductLookup
	log      logrus.FieldLogger
}

func NewOrderService(orders OrderStore, products ProductLookup, log logrus.FieldLogger) *OrderService {
	return &OrderService{orders: orders, products: products, log: log}
}

// OrderDetails returns the order with its status history. Each line shows the
// product's current name and image when it still exists; the price is always
// the one paid.
func (s *OrderService) OrderDetails(ctx context.Context, id uuid.UUID) (*domain.OrderDetails, error) {
	order, err := s.orders.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.orders.StatusHistory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load status history: %w", err)
	}

	ids := make([]string, len(order.Items))
	for i, item := range order.Items {
		ids[i] = item.ProductID
	}

	byID := map[string]*domain.Product{}
	products, err := s.products.GetProducts(ctx, ids)
	if err != nil {
		// the snapshot is enough to render the order
		logger.FromContext(ctx, s.log).WithError(err).Warn("catalog unavailable, using order snapshot")
	}
	for _, p := range products {
		byID[p.ID] = p
	}

	details := &domain.OrderDetails{
		Order:   *order,
		Items:   make([]domain.OrderItemDetail, 0, len(order.Items)),
		History: history,
	}
	for _, item := range order.Items {
		d := domain.OrderItemDetail{
			OrderItem: item,
			Name:      item.ProductName,
			Subtotal:  item.Subtotal(),
		}
		if p, ok := byID[item.ProductID]; ok {
			d.Name = p.Name
			d.ImageURL = p.ImageURL
		} else if err == nil {
			d.Name = archivedName
			d.Archived = true
		}
		details.Items = append(details.Items, d)
	}
	return details, nil
}

// Orders lists orders newest first, optionally filtered by customer name,
// email or order id.
func (s *OrderService) Orders(ctx context.Context, search string) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, strings.TrimSpace(search), 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) RecentOrders(ctx context.Context, limit int) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, "", limit)
	if err != nil {
		return nil, fmt.Errorf("list recent orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	to := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !to.IsValid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	order, err := s.orders.UpdateStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"order_id": id,
		"status":   to,
	}).Info("order status updated")
	return order, nil
}

func (s *OrderService) Revenue(ctx context.Context) (float64, error) {
	return s.orders.TotalRevenue(ctx)
}

func (s *OrderService) CountOrders(ctx context.Context) (int64, error) {
	return s.orders.CountOrders(ctx)
}
