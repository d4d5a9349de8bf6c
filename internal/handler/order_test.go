package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamsahan/threadly/internal/httperr"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/queue"
	"github.com/iamsahan/threadly/internal/repository"
)

// fakeCatalog is an in-memory ProductCatalog.
type fakeCatalog struct {
	byID map[uint64]model.Product
}

func (f *fakeCatalog) Get(_ context.Context, id uint64) (model.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

// fakeOrderStore is an in-memory OrderStore.
type fakeOrderStore struct {
	createErr error
	seq       uint64
	orders    []model.Order
}

func (f *fakeOrderStore) Create(_ context.Context, o model.Order) (uint64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.seq++
	o.ID = f.seq
	f.orders = append(f.orders, o)
	return f.seq, nil
}

func (f *fakeOrderStore) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) ListAll(_ context.Context) ([]model.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderStore) UpdateStatus(_ context.Context, id uint64, status string) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// fakeOrderEvents records published order events.
type fakeOrderEvents struct {
	fail   bool
	events []queue.OrderPlacedEvent
}

func (f *fakeOrderEvents) PublishOrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	if f.fail {
		return fmt.Errorf("broker unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

type orderFixture struct {
	e       *echo.Echo
	store   *fakeOrderStore
	catalog *fakeCatalog
	events  *fakeOrderEvents
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := &fakeOrderStore{}
	catalog := &fakeCatalog{byID: map[uint64]model.Product{}}
	events := &fakeOrderEvents{}
	h := NewOrderHandler(store, catalog, events)

	// Routes carry a principal the way Authenticate leaves one.
	asUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.SetPrincipal(c, model.Principal{ID: 7, Name: "Jane", Email: "jane@example.com", Role: model.RoleUser})
			return next(c)
		}
	}

	e := echo.New()
	e.HTTPErrorHandler = httperr.NewHandler(false)
	e.POST("/v1/orders", h.Create, asUser)
	e.GET("/v1/orders", h.ListMine, asUser)

	return &orderFixture{e: e, store: store, catalog: catalog, events: events}
}

func (f *orderFixture) placeOrder(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderComputesTotalServerSide(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Linen Shirt", PriceCents: 2599, Stock: 10}
	f.catalog.byID[2] = model.Product{ID: 2, Name: "Wool Socks", PriceCents: 999, Stock: 5}

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":2},{"product_id":2,"quantity":1}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.store.orders, 1)
	o := f.store.orders[0]
	assert.Equal(t, uint64(7), o.UserID)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, uint64(2*2599+999), o.TotalCents)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, o.TotalCents, f.events.events[0].TotalCents)
	assert.Equal(t, 2, f.events.events[0].ItemCount)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2*2599+999), body["total_cents"])
}

// Totals larger than 32 bits must come out exact, not wrapped.
func TestCreateOrderTotalSurvivesUint32Overflow(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Bespoke Gown", PriceCents: 500_000, Stock: 9000}

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":9000}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, f.store.orders, 1)
	// 500000 * 9000 = 4.5e9, past MaxUint32; uint32 math would have
	// committed 205,032,704.
	assert.Equal(t, uint64(4_500_000_000), f.store.orders[0].TotalCents)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, uint64(4_500_000_000), f.events.events[0].TotalCents)
}

func TestCreateOrderRejectsOversizedQuantity(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Linen Shirt", PriceCents: 100, Stock: 10}

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":42949673}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, bodyMessage(t, rec), "Item quantity must not exceed")
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.events.events)
}

func TestCreateOrderRejectsExcessiveTotal(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Gold Thread", PriceCents: 4_000_000_000, Stock: 10_000}

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":10000}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Order total exceeds the allowed maximum.", bodyMessage(t, rec))
	assert.Empty(t, f.store.orders)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Linen Shirt", PriceCents: 2599, Stock: 1}

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":2}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock for product 1.", bodyMessage(t, rec))
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.events.events)
}

// A concurrent order can still win the stock between the catalog read and
// the insert; the store's rejection surfaces as a 400, not a 500.
func TestCreateOrderStockRaceSurfacesAsBadRequest(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Linen Shirt", PriceCents: 2599, Stock: 5}
	f.store.createErr = repository.ErrInsufficientStock

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":2}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Insufficient stock for one of the ordered products.", bodyMessage(t, rec))
	assert.Empty(t, f.events.events)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	rec := f.placeOrder(`{"items":[{"product_id":9,"quantity":1}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Product 9 does not exist.", bodyMessage(t, rec))
}

func TestCreateOrderBrokerOutageDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.catalog.byID[1] = model.Product{ID: 1, Name: "Linen Shirt", PriceCents: 2599, Stock: 10}
	f.events.fail = true

	rec := f.placeOrder(`{"items":[{"product_id":1,"quantity":1}],"shipping_address":"1 Main St"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.store.orders, 1)
}
