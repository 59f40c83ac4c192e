package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const orderColumns = `id, checkout_id, session_id, customer_name, customer_email, shipping_address,
	city, zip_code, total_amount, currency, status, created_at, updated_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder persists order in a single transaction: the header, a stock
// decrement for every line (rows locked FOR UPDATE), the immutable line items,
// the first status history row and an order.placed outbox event. Any failure,
// including *domain.OutOfStockError, rolls everything back.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	payload, err := json.Marshal(domain.OrderPlacedEvent{
		OrderID:     order.ID,
		CheckoutID:  order.CheckoutID,
		SessionID:   order.SessionID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		PlacedAt:    order.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertOrderHeader(ctx, tx, order); err != nil {
			return err
		}
		if err := reserveStock(ctx, tx, order.Items); err != nil {
			return err
		}
		if err := insertOrderItems(ctx, tx, order); err != nil {
			return err
		}
		if err := appendStatusHistory(ctx, tx, order.ID, nil, order.Status, order.CreatedAt); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
			order.ID, domain.EventTypeOrderPlaced, payload)
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
		return nil
	})
}

// ImportOrder stores a historical order as-is. Inventory and the outbox are
// left alone.
func (r *OrderRepository) ImportOrder(ctx context.Context, order *domain.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = order.CreatedAt

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertOrderHeader(ctx, tx, order); err != nil {
			return err
		}
		if err := insertOrderItems(ctx, tx, order); err != nil {
			return err
		}
		return appendStatusHistory(ctx, tx, order.ID, nil, order.Status, order.CreatedAt)
	})
}

func insertOrderHeader(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `INSERT INTO orders (id, checkout_id, session_id, customer_name, customer_email, shipping_address,
	          city, zip_code, total_amount, currency, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.ExecContext(ctx, query,
		order.ID,
		order.CheckoutID,
		order.SessionID,
		order.Customer.Name,
		order.Customer.Email,
		order.Customer.Address,
		order.Customer.City,
		order.Customer.Zip,
		order.TotalAmount,
		order.Currency,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateCheckout
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func reserveStock(ctx context.Context, tx *sql.Tx, items []domain.OrderItem) error {
	need := make(map[string]int, len(items))
	for _, item := range items {
		need[item.ProductID] += item.Quantity
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	// fixed lock order keeps concurrent checkouts from deadlocking
	sort.Strings(ids)

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, stock FROM inventory WHERE product_id = ANY($1) ORDER BY product_id FOR UPDATE`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("lock inventory: %w", err)
	}
	have := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			rows.Close()
			return fmt.Errorf("scan inventory row: %w", err)
		}
		have[id] = stock
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, item := range items {
		if have[item.ProductID] < need[item.ProductID] {
			return &domain.OutOfStockError{
				ProductID: item.ProductID,
				Name:      item.ProductName,
				Requested: need[item.ProductID],
				Available: have[item.ProductID],
			}
		}
	}

	for _, id := range ids {
		_, err := tx.ExecContext(ctx,
			`UPDATE inventory SET stock = stock - $2, last_updated = NOW() WHERE product_id = $1`,
			id, need[id])
		if err != nil {
			return fmt.Errorf("decrement stock for %s: %w", id, err)
		}
	}
	return nil
}

func insertOrderItems(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `INSERT INTO order_items (order_id, position, product_id, product_name, quantity, price_at_purchase, specs)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, item := range order.Items {
		specs := item.Specs
		if specs == nil {
			specs = map[string]any{}
		}
		specsJSON, err := json.Marshal(specs)
		if err != nil {
			return fmt.Errorf("marshal item specs: %w", err)
		}

		_, err = tx.ExecContext(ctx, query,
			order.ID,
			i,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.PriceAtPurchase,
			specsJSON)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func appendStatusHistory(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, from *domain.OrderStatus, to domain.OrderStatus, at time.Time) error {
	var fromValue sql.NullString
	if from != nil {
		fromValue = sql.NullString{String: string(*from), Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, from_status, to_status, changed_at) VALUES ($1, $2, $3, $4)`,
		orderID, fromValue, to, at)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getOrder(ctx, "id", id)
}

func (r *OrderRepository) GetOrderByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*domain.Order, error) {
	return r.getOrder(ctx, "checkout_id", checkoutID)
}

func (r *OrderRepository) getOrder(ctx context.Context, column string, value uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + ` = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by %s: %w", column, err)
	}

	items, err := loadItems(ctx, r.db, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

// ListOrders returns orders newest first. A non-empty search matches customer
// name, email or order id; limit 0 means no limit.
func (r *OrderRepository) ListOrders(ctx context.Context, search string, limit int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
	          WHERE $1 = '' OR customer_name ILIKE $2 OR customer_email ILIKE $2 OR id::text ILIKE $2
	          ORDER BY created_at DESC
	          LIMIT NULLIF($3::int, 0)`

	pattern := "%" + likeEscaper.Replace(search) + "%"
	rows, err := r.db.QueryContext(ctx, query, search, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := loadItems(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// UpdateStatus moves an order to status and appends an audit row. Cancelling
// returns the ordered quantities to inventory.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var current domain.OrderStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if !domain.CanTransitionTo(current, status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current, status)
		}

		if status == domain.OrderStatusCancelled {
			_, err := tx.ExecContext(ctx,
				`UPDATE inventory i SET stock = i.stock + s.qty, last_updated = NOW()
				 FROM (SELECT product_id, SUM(quantity) AS qty FROM order_items WHERE order_id = $1 GROUP BY product_id) s
				 WHERE i.product_id = s.product_id`, id)
			if err != nil {
				return fmt.Errorf("restock cancelled order: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return appendStatusHistory(ctx, tx, id, &current, status, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	return r.GetOrderByID(ctx, id)
}

func (r *OrderRepository) StatusHistory(ctx context.Context, id uuid.UUID) ([]domain.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT from_status, to_status, changed_at FROM order_status_history WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var history []domain.StatusChange
	for rows.Next() {
		var from sql.NullString
		var change domain.StatusChange
		if err := rows.Scan(&from, &change.To, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		if from.Valid {
			s := domain.OrderStatus(from.String)
			change.From = &s
		}
		history = append(history, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return history, nil
}

// TotalRevenue sums every order that was not cancelled.
func (r *OrderRepository) TotalRevenue(ctx context.Context) (float64, error) {
	var revenue float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> $1`,
		domain.OrderStatusCancelled).Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("query revenue: %w", err)
	}
	return revenue, nil
}

func (r *OrderRepository) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CheckoutID,
		&order.SessionID,
		&order.Customer.Name,
		&order.Customer.Email,
		&order.Customer.Address,
		&order.Customer.City,
		&order.Customer.Zip,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	rows, err := q.QueryContext(ctx,
		`SELECT order_id, product_id, product_name, quantity, price_at_purchase, specs
		 FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, position`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		var orderID uuid.UUID
		var item domain.OrderItem
		var specsJSON []byte
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase, &specsJSON); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if len(specsJSON) > 0 {
			if err := json.Unmarshal(specsJSON, &item.Specs); err != nil {
				return nil, fmt.Errorf("unmarshal item specs: %w", err)
			}
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}
