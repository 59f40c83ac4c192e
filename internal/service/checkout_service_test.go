package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Archer110/nexus/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	svc     *CheckoutService
	carts   *CartService
	cartDB  *MockCartStore
	cache   *MockCache
	catalog *MockCatalog
	orders  *MockOrderStore
}

func setupCheckout() *checkoutFixture {
	carts, cartDB, c, catalog := setupCartService()
	orders := NewMockOrderStore()
	return &checkoutFixture{
		svc:     NewCheckoutService(carts, catalog, orders, "USD", testLogger()),
		carts:   carts,
		cartDB:  cartDB,
		cache:   c,
		catalog: catalog,
		orders:  orders,
	}
}

func validCustomer() domain.Customer {
	return domain.Customer{
		Name:    "Ada Lovelace",
		Email:   "ada@example.com",
		Address: "12 Analytical St",
		City:    "London",
		Zip:     "N1 9GU",
	}
}

func TestCheckout_Success(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 2))
	require.NoError(t, f.carts.Add(ctx, "s1", caseID, 1))

	result, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	require.NoError(t, err)
	assert.False(t, result.Replayed)

	order := result.Order
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.Equal(t, 2019.48, order.TotalAmount)
	assert.Equal(t, "USD", order.Currency)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Phone X", order.Items[0].ProductName)
	assert.Equal(t, 999.99, order.Items[0].PriceAtPurchase)
	assert.Equal(t, "8GB", order.Items[0].Specs["ram"])

	cart, err := f.carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCheckout_OrdersStoredCartNotCachedCopy(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))

	// a read that raced a removal left an older cart in the cache
	stale := &domain.Cart{SessionID: "s1", Items: []domain.CartItem{
		{ProductID: phoneID, Quantity: 1},
		{ProductID: caseID, Quantity: 3},
	}}
	require.NoError(t, f.cache.Set(ctx, "s1", stale))

	result, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	require.NoError(t, err)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, phoneID, result.Order.Items[0].ProductID)
	assert.Equal(t, 999.99, result.Order.TotalAmount)
}

func TestCheckout_InvalidCustomer(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))

	customer := validCustomer()
	customer.Email = "not-an-email"
	_, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: customer})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)

	customer = validCustomer()
	customer.Name = ""
	_, err = f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: customer})
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, 0, f.orders.CreateCalls)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := setupCheckout()

	_, err := f.svc.Checkout(context.Background(), CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.True(t, domain.IsValidation(err))
}

func TestCheckout_OutOfStockLeavesCartUnchanged(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 3))
	f.orders.CreateErr = &domain.OutOfStockError{ProductID: phoneID, Name: "Phone X", Requested: 3, Available: 1}

	_, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	var oos *domain.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, 1, oos.Available)

	cart, err := f.cartDB.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestCheckout_ProductRemovedFromCatalog(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))
	require.NoError(t, f.catalog.DeleteProduct(ctx, phoneID))

	_, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 0, f.orders.CreateCalls)
}

func TestCheckout_StoreFailure(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))
	f.orders.CreateErr = errors.New("connection reset")

	_, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	require.ErrorContains(t, err, "connection reset")
	assert.False(t, domain.IsValidation(err))

	cart, err := f.cartDB.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCheckout_IdempotencyKeyReplaysOrder(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))

	req := CheckoutRequest{SessionID: "s1", IdempotencyKey: "submit-1", Customer: validCustomer()}
	first, err := f.svc.Checkout(ctx, req)
	require.NoError(t, err)

	second, err := f.svc.Checkout(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Equal(t, 1, f.orders.CreateCalls)

	// same key from another session is a different checkout
	require.NoError(t, f.carts.Add(ctx, "s2", caseID, 1))
	other, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s2", IdempotencyKey: "submit-1", Customer: validCustomer()})
	require.NoError(t, err)
	assert.NotEqual(t, first.Order.ID, other.Order.ID)
}

func TestCheckout_PriceSnapshotSurvivesCatalogChange(t *testing.T) {
	f := setupCheckout()
	ctx := context.Background()
	require.NoError(t, f.carts.Add(ctx, "s1", phoneID, 1))

	result, err := f.svc.Checkout(ctx, CheckoutRequest{SessionID: "s1", Customer: validCustomer()})
	require.NoError(t, err)

	require.NoError(t, f.catalog.UpdatePrice(ctx, phoneID, 1.23))

	orders := NewOrderService(f.orders, f.catalog, testLogger())
	details, err := orders.OrderDetails(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Len(t, details.Items, 1)
	assert.Equal(t, 999.99, details.Items[0].PriceAtPurchase)
	assert.Equal(t, 999.99, details.Items[0].Subtotal)
	assert.Equal(t, 999.99, details.TotalAmount)
}
