package domain

import "time"

// MaxItemQuantity caps a single cart line.
const MaxItemQuantity = 99

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	SessionID string     `bson:"session_id" json:"session_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID string    `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) ProductIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}

// CartLine is a cart item priced against the current catalog.
type CartLine struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
	Unavailable bool    `json:"unavailable,omitempty"`
}

type CartView struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
}
