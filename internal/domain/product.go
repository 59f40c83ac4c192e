package domain

import "time"

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	ImageURL    string         `json:"image_url"`
	Specs       map[string]any `json:"specs,omitempty"`
	Stock       int            `json:"stock"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Paging bounds for catalog queries. MaxPage*MaxPerPage fits comfortably in
// an int64 skip.
const (
	MaxPerPage = 100
	MaxPage    = 10000
)

// CatalogQuery selects a page of the catalog. SpecFilters maps a spec key to the
// accepted values; a product matches when its spec equals any of them.
type CatalogQuery struct {
	Page        int
	PerPage     int
	Search      string
	Category    string
	SpecFilters map[string][]string
}

// Skip is the number of products before the requested page, with Page and
// PerPage clamped to their bounds.
func (q CatalogQuery) Skip() int64 {
	if q.Page < 1 || q.PerPage < 1 {
		return 0
	}
	page := min(q.Page, MaxPage)
	perPage := min(q.PerPage, MaxPerPage)
	return int64(page-1) * int64(perPage)
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Facets lists every category and, for a selected category, the spec keys that
// have at least two distinct values.
type Facets struct {
	Categories []string            `json:"categories"`
	Specs      map[string][]string `json:"specs"`
}
