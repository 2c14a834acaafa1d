package cartstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/pkg/client"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI keeps a server-side cart in memory and records calls
type fakeAPI struct {
	mu       sync.Mutex
	products map[uuid.UUID]*client.Product
	items    []client.CartItem
	calls    []string
	failNext error
	// onGet runs at the start of GetCart
	onGet func()
}

func newFakeAPI(products ...*client.Product) *fakeAPI {
	f := &fakeAPI{products: map[uuid.UUID]*client.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeAPI) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeAPI) GetCart(ctx context.Context) (*client.Cart, error) {
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "get")
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	return &client.Cart{Items: append([]client.CartItem(nil), f.items...)}, nil
}

func (f *fakeAPI) AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (*client.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "add")
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	for i := range f.items {
		if f.items[i].ProductID == productID {
			f.items[i].Quantity += quantity
			item := f.items[i]
			return &item, nil
		}
	}
	item := client.CartItem{ID: uuid.New(), ProductID: productID, Quantity: quantity, Product: f.products[productID]}
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeAPI) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*client.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	if err := f.takeFailure(); err != nil {
		return nil, err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = quantity
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "cart item not found"}
}

func (f *fakeAPI) RemoveCartItem(ctx context.Context, itemID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "remove")
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Message: "cart item not found"}
}

func (f *fakeAPI) ClearCart(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "clear")
	if err := f.takeFailure(); err != nil {
		return err
	}
	f.items = nil
	return nil
}

func product(price string) *client.Product {
	return &client.Product{ID: uuid.New(), Name: "p-" + price, Price: decimal.RequireFromString(price)}
}

func TestAddRefetchesAndAggregates(t *testing.T) {
	a, b := product("10.00"), product("5.00")
	api := newFakeAPI(a, b)
	store := New(api)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, a.ID, 2))
	require.NoError(t, store.Add(ctx, b.ID, 1))

	assert.Equal(t, []string{"add", "get", "add", "get"}, api.calls)
	assert.Len(t, store.Items(), 2)
	assert.Equal(t, 3, store.ItemCount())
	assert.True(t, store.Total().Equal(decimal.RequireFromString("25.00")))
	assert.True(t, store.Loaded())
}

func TestRepeatedAddIncrementsSingleLine(t *testing.T) {
	a := product("3.50")
	store := New(newFakeAPI(a))
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, a.ID, 1))
	require.NoError(t, store.Add(ctx, a.ID, 2))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	a := product("10.00")
	api := newFakeAPI(a)
	store := New(api)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, a.ID, 1))
	before := store.Items()

	api.failNext = errors.New("network down")
	err := store.Add(ctx, a.ID, 4)
	require.Error(t, err)

	assert.Equal(t, before, store.Items())
	assert.Equal(t, "add", api.calls[len(api.calls)-1])
}

func TestUpdateQuantityBelowOneIsRejectedLocally(t *testing.T) {
	a := product("10.00")
	api := newFakeAPI(a)
	store := New(api)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, a.ID, 1))
	calls := len(api.calls)

	for _, qty := range []int{0, -1} {
		err := store.UpdateQuantity(ctx, store.Items()[0].ID, qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.ErrorIs(t, store.Add(ctx, a.ID, qty), ErrInvalidQuantity)
	}
	assert.Len(t, api.calls, calls)
}

func TestRemoveAndClear(t *testing.T) {
	a, b := product("1.00"), product("2.00")
	store := New(newFakeAPI(a, b))
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, a.ID, 1))
	require.NoError(t, store.Add(ctx, b.ID, 1))

	require.NoError(t, store.Remove(ctx, store.Items()[0].ID))
	assert.Len(t, store.Items(), 1)

	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Items())
	assert.True(t, store.Total().IsZero())
}

func TestItemsReturnsCopy(t *testing.T) {
	a := product("1.00")
	store := New(newFakeAPI(a))
	require.NoError(t, store.Add(context.Background(), a.ID, 1))

	items := store.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestLoadingDuringRefresh(t *testing.T) {
	api := newFakeAPI()
	store := New(api)
	var sawLoading bool
	api.onGet = func() { sawLoading = store.Loading() }

	require.NoError(t, store.Refresh(context.Background()))
	assert.True(t, sawLoading)
	assert.False(t, store.Loading())
}

// gatedAPI holds the first GetCart response until release is closed
type gatedAPI struct {
	*fakeAPI
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedAPI) GetCart(ctx context.Context) (*client.Cart, error) {
	first := false
	g.once.Do(func() { first = true })
	cart, err := g.fakeAPI.GetCart(ctx)
	if first {
		close(g.started)
		<-g.release
	}
	return cart, err
}

func TestSlowRefreshDoesNotOverwriteNewerWrite(t *testing.T) {
	a := product("7.00")
	api := &gatedAPI{fakeAPI: newFakeAPI(a), started: make(chan struct{}), release: make(chan struct{})}
	store := New(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- store.Refresh(ctx) }()
	<-api.started

	require.NoError(t, store.Add(ctx, a.ID, 1))
	assert.Len(t, store.Items(), 1)
	assert.True(t, store.Loading(), "the first refresh is still in flight")

	close(api.release)
	require.NoError(t, <-done)

	assert.Len(t, store.Items(), 1)
	assert.Equal(t, 1, store.ItemCount())
	assert.True(t, store.Total().Equal(decimal.RequireFromString("7.00")))
	assert.False(t, store.Loading())
}

// Feature: storefront, Property 12: Cart cache mirrors the server after every write
func TestProperty_CacheMirrorsServerAfterWrites(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("after any sequence of adds the cache equals the server cart", prop.ForAll(
		func(picks []int, qtys []int) bool {
			products := []*client.Product{product("1.25"), product("10.00"), product("0.99")}
			api := newFakeAPI(products...)
			store := New(api)
			ctx := context.Background()

			expectedTotal := decimal.Zero
			expectedCount := 0
			for i, pick := range picks {
				if i >= len(qtys) {
					break
				}
				p := products[pick%len(products)]
				if err := store.Add(ctx, p.ID, qtys[i]); err != nil {
					return false
				}
				expectedTotal = expectedTotal.Add(p.Price.Mul(decimal.NewFromInt(int64(qtys[i]))))
				expectedCount += qtys[i]
			}

			return store.ItemCount() == expectedCount &&
				store.Total().Equal(expectedTotal) &&
				len(store.Items()) == len(api.items)
		},
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
