package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/Archer110/nexus/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type CatalogPage struct {
	Products []*domain.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"per_page"`
	Pages    int               `json:"pages"`
}

type NewProduct struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description" validate:"max=2000"`
	Price       float64        `json:"price" validate:"gte=0"`
	Category    string         `json:"category" validate:"required,max=100"`
	ImageURL    string         `json:"image_url" validate:"omitempty,url"`
	Specs       map[string]any `json:"specs"`
	Stock       int            `json:"stock" validate:"gte=0"`
}

type CatalogService struct {
	catalog   CatalogStore
	inventory InventoryStore
	perPage   int
	validate  *validator.Validate
	log       logrus.FieldLogger
}

func NewCatalogService(catalog CatalogStore, inventory InventoryStore, perPage int, log logrus.FieldLogger) *CatalogService {
	if perPage <= 0 {
		perPage = 9
	}
	return &CatalogService{
		catalog:   catalog,
		inventory: inventory,
		perPage:   perPage,
		validate:  newValidator(),
		log:       log,
	}
}

// Catalog returns one page of products, newest first, with current stock.
func (s *CatalogService) Catalog(ctx context.Context, q domain.CatalogQuery) (*CatalogPage, error) {
	q.Page = min(max(q.Page, 1), domain.MaxPage)
	if q.PerPage <= 0 {
		q.PerPage = s.perPage
	}
	q.PerPage = min(q.PerPage, domain.MaxPerPage)
	q.Search = strings.TrimSpace(q.Search)

	products, total, err := s.catalog.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := s.attachStock(ctx, products); err != nil {
		return nil, err
	}

	if products == nil {
		products = []*domain.Product{}
	}
	return &CatalogPage{
		Products: products,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		Pages:    int((total + int64(q.PerPage) - 1) / int64(q.PerPage)),
	}, nil
}

func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachStock(ctx, []*domain.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Facets lists all categories and, when category is set, its filterable specs.
func (s *CatalogService) Facets(ctx context.Context, category string) (*domain.Facets, error) {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	facets := &domain.Facets{Categories: categories, Specs: map[string][]string{}}
	if category == "" {
		return facets, nil
	}

	specs, err := s.catalog.SpecFacets(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list spec facets: %w", err)
	}
	if specs != nil {
		facets.Specs = specs
	}
	return facets, nil
}

func (s *CatalogService) AdminCatalog(ctx context.Context, search string, page, perPage int) (*CatalogPage, error) {
	return s.Catalog(ctx, domain.CatalogQuery{Page: page, PerPage: perPage, Search: search})
}

// CreateProduct writes the document and its inventory row. If the inventory
// write fails the document is removed again.
func (s *CatalogService) CreateProduct(ctx context.Context, in NewProduct) (*domain.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	p := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       domain.RoundMoney(in.Price),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
		Specs:       in.Specs,
		Stock:       in.Stock,
	}
	if err := s.catalog.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.inventory.SetStock(ctx, p.ID, in.Stock); err != nil {
		if delErr := s.catalog.DeleteProduct(ctx, p.ID); delErr != nil {
			logger.FromContext(ctx, s.log).WithError(delErr).WithField("product_id", p.ID).
				Error("failed to remove product after inventory write failed")
		}
		return nil, fmt.Errorf("set stock: %w", err)
	}

	logger.FromContext(ctx, s.log).WithField("product_id", p.ID).Info("product created")
	return p, nil
}

// UpdateProduct edits a single field. Only price and stock are editable.
func (s *CatalogService) UpdateProduct(ctx context.Context, id, field, value string) (*domain.Product, error) {
	if _, err := s.catalog.GetProduct(ctx, id); err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	switch field {
	case "price":
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || price < 0 {
			return nil, domain.NewValidationError("price", "must be a non-negative number")
		}
		if err := s.catalog.UpdatePrice(ctx, id, domain.RoundMoney(price)); err != nil {
			return nil, err
		}
	case "stock":
		stock, err := strconv.Atoi(value)
		if err != nil || stock < 0 {
			return nil, domain.NewValidationError("stock", "must be a non-negative integer")
		}
		if err := s.inventory.SetStock(ctx, id, stock); err != nil {
			return nil, fmt.Errorf("set stock: %w", err)
		}
	default:
		return nil, domain.NewValidationError("field", "must be price or stock")
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{"product_id": id, "field": field}).Info("product updated")
	return s.Product(ctx, id)
}

// DeleteProduct removes the product from both stores. Orders keep their
// snapshot of it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		return err
	}
	if err := s.inventory.DeleteStock(ctx, id); err != nil {
		return fmt.Errorf("delete stock: %w", err)
	}
	logger.FromContext(ctx, s.log).WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *CatalogService) CountProducts(ctx context.Context) (int64, error) {
	return s.catalog.CountProducts(ctx)
}

func (s *CatalogService) CategoryBreakdown(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.catalog.CategoryBreakdown(ctx)
}

func (s *CatalogService) attachStock(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	stock, err := s.inventory.GetStock(ctx, ids)
	if err != nil {
		return fmt.Errorf("load stock: %w", err)
	}
	for _, p := range products {
		p.Stock = stock[p.ID]
	}
	return nil
}
