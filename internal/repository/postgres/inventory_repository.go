package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetStock returns the stock of every known product in productIDs. Products
// without an inventory row are absent from the map.
func (r *InventoryRepository) GetStock(ctx context.Context, productIDs []string) (map[string]int, error) {
	stock := make(map[string]int, len(productIDs))
	if len(productIDs) == 0 {
		return stock, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, stock FROM inventory WHERE product_id = ANY($1)`,
		pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		stock[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return stock, nil
}

func (r *InventoryRepository) SetStock(ctx context.Context, productID string, stock int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inventory (product_id, stock, last_updated) VALUES ($1, $2, NOW())
		 ON CONFLICT (product_id) DO UPDATE SET stock = EXCLUDED.stock, last_updated = NOW()`,
		productID, stock)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

func (r *InventoryRepository) DeleteStock(ctx context.Context, productID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	return nil
}
