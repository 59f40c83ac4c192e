package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalogService() (*CatalogService, *MockCatalog, *MockInventory) {
	catalog := NewMockCatalog(testProducts()...)
	inventory := NewMockInventory()
	inventory.Stock[phoneID] = 4
	return NewCatalogService(catalog, inventory, 9, testLogger()), catalog, inventory
}

func TestCatalog_PageWithStock(t *testing.T) {
	svc, _, _ := setupCatalogService()

	page, err := svc.Catalog(context.Background(), domain.CatalogQuery{Page: 0, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Products, 1)
	assert.Equal(t, phoneID, page.Products[0].ID)
	assert.Equal(t, 4, page.Products[0].Stock)

	page, err = svc.Catalog(context.Background(), domain.CatalogQuery{Page: 2, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, 0, page.Products[0].Stock)
}

func TestCatalog_ClampsPaging(t *testing.T) {
	svc, _, _ := setupCatalogService()

	page, err := svc.Catalog(context.Background(), domain.CatalogQuery{Page: math.MaxInt/9 + 2, PerPage: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPage, page.Page)
	assert.Equal(t, domain.MaxPerPage, page.PerPage)
	assert.Empty(t, page.Products)
	assert.Equal(t, int64(2), page.Total)
}

func TestCatalog_DefaultPerPageAndEmptyResult(t *testing.T) {
	svc, _, _ := setupCatalogService()

	page, err := svc.Catalog(context.Background(), domain.CatalogQuery{Category: "fashion"})
	require.NoError(t, err)
	assert.Equal(t, 9, page.PerPage)
	assert.NotNil(t, page.Products)
	assert.Empty(t, page.Products)
	assert.Equal(t, 0, page.Pages)
}

func TestCatalog_Product(t *testing.T) {
	svc, _, _ := setupCatalogService()
	ctx := context.Background()

	p, err := svc.Product(ctx, phoneID)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Stock)

	_, err = svc.Product(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalog_Facets(t *testing.T) {
	svc, _, _ := setupCatalogService()
	ctx := context.Background()

	facets, err := svc.Facets(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"tech"}, facets.Categories)
	assert.Empty(t, facets.Specs)

	facets, err = svc.Facets(ctx, "tech")
	require.NoError(t, err)
	assert.Equal(t, []string{"16GB", "8GB"}, facets.Specs["ram"])
}

func TestCatalog_CreateProduct(t *testing.T) {
	svc, catalog, inventory := setupCatalogService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, NewProduct{Name: " Lamp ", Price: 12.346, Category: "home", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)
	assert.Equal(t, 12.35, p.Price)
	assert.Equal(t, 3, inventory.Stock[p.ID])
	assert.Contains(t, catalog.Products, p.ID)

	_, err = svc.CreateProduct(ctx, NewProduct{Name: "Lamp", Price: -1, Category: "home"})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "price", vErr.Field)

	_, err = svc.CreateProduct(ctx, NewProduct{Name: "Lamp", Category: "home", ImageURL: "not a url"})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "image_url", vErr.Field)
}

func TestCatalog_CreateProductRollsBackOnInventoryFailure(t *testing.T) {
	svc, catalog, inventory := setupCatalogService()
	inventory.SetErr = errors.New("postgres down")

	_, err := svc.CreateProduct(context.Background(), NewProduct{Name: "Lamp", Category: "home"})
	require.Error(t, err)
	assert.Len(t, catalog.Products, 2)
}

func TestCatalog_UpdateProduct(t *testing.T) {
	svc, catalog, inventory := setupCatalogService()
	ctx := context.Background()

	p, err := svc.UpdateProduct(ctx, phoneID, "price", "899.5")
	require.NoError(t, err)
	assert.Equal(t, 899.5, p.Price)
	assert.Equal(t, 899.5, catalog.Products[phoneID].Price)

	p, err = svc.UpdateProduct(ctx, phoneID, "stock", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, p.Stock)
	assert.Equal(t, 12, inventory.Stock[phoneID])

	for _, tc := range []struct{ field, value string }{
		{"price", "-3"},
		{"price", "abc"},
		{"stock", "1.5"},
		{"stock", "-1"},
		{"name", "x"},
	} {
		_, err := svc.UpdateProduct(ctx, phoneID, tc.field, tc.value)
		assert.True(t, domain.IsValidation(err), "%s=%s", tc.field, tc.value)
	}

	_, err = svc.UpdateProduct(ctx, "missing", "price", "1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalog_DeleteProduct(t *testing.T) {
	svc, catalog, inventory := setupCatalogService()
	ctx := context.Background()

	require.NoError(t, svc.DeleteProduct(ctx, phoneID))
	assert.NotContains(t, catalog.Products, phoneID)
	assert.NotContains(t, inventory.Stock, phoneID)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, phoneID), domain.ErrProductNotFound)
}

func TestCatalog_AdminStats(t *testing.T) {
	svc, _, _ := setupCatalogService()
	ctx := context.Background()

	n, err := svc.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	breakdown, err := svc.CategoryBreakdown(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tech", breakdown[0].Category)
}
