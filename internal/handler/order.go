package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/queue"
	"github.com/iamsahan/threadly/internal/repository"
)

// OrderPublisher emits order lifecycle events to the message broker.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// OrderStore is the slice of repository.OrderRepo the handler needs.
type OrderStore interface {
	Create(ctx context.Context, o model.Order) (uint64, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// ProductCatalog resolves product ids to current catalog entries.
type ProductCatalog interface {
	Get(ctx context.Context, id uint64) (model.Product, error)
}

// Order placement limits. Quantities and totals beyond these are
// operator mistakes or abuse, not real purchases.
const (
	maxItemQuantity    = 10_000
	maxOrderTotalCents = 10_000_000_000 // $100M
)

// OrderHandler serves order placement and management.
type OrderHandler struct {
	Orders   OrderStore
	Products ProductCatalog
	Events   OrderPublisher
}

func NewOrderHandler(o OrderStore, p ProductCatalog, ev OrderPublisher) *OrderHandler {
	return &OrderHandler{Orders: o, Products: p, Events: ev}
}

type orderItemReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}
type createOrderReq struct {
	Items           []orderItemReq `json:"items"`
	ShippingAddress string         `json:"shipping_address"`
}
type orderStatusReq struct {
	Status string `json:"status"`
}

// Create places an order for the current principal. Prices are read from
// the catalog at placement time; the total is computed server-side.
func (h *OrderHandler) Create(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}

	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	var v apperror.ValidationError
	if len(req.Items) == 0 {
		v.Add("items", "Order must contain at least one item")
	}
	if req.ShippingAddress == "" {
		v.Add("shipping_address", "Shipping address is required")
	}
	for _, it := range req.Items {
		if it.Quantity == 0 {
			v.Add("items", "Item quantity must be greater than zero")
			break
		}
		if it.Quantity > maxItemQuantity {
			v.Add("items", fmt.Sprintf("Item quantity must not exceed %d", maxItemQuantity))
			break
		}
	}
	if v.HasErrors() {
		return &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	order := model.Order{
		UserID:          p.ID,
		Status:          model.OrderPending,
		ShippingAddress: req.ShippingAddress,
	}
	for _, it := range req.Items {
		prod, err := h.Products.Get(ctx, it.ProductID)
		if err != nil {
			if err == repository.ErrNotFound {
				return apperror.BadRequestf("Product %d does not exist.", it.ProductID)
			}
			return err
		}
		if uint64(it.Quantity) > uint64(prod.Stock) {
			return apperror.BadRequestf("Insufficient stock for product %d.", it.ProductID)
		}
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      prod.ID,
			ProductName:    prod.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: prod.PriceCents,
		})
		// Line totals are computed in uint64; uint32 cents times uint32
		// quantity overflows for legal-looking inputs.
		order.TotalCents += uint64(prod.PriceCents) * uint64(it.Quantity)
	}
	if order.TotalCents > maxOrderTotalCents {
		return apperror.BadRequest("Order total exceeds the allowed maximum.")
	}

	id, err := h.Orders.Create(ctx, order)
	if err != nil {
		if err == repository.ErrInsufficientStock {
			return apperror.BadRequest("Insufficient stock for one of the ordered products.")
		}
		return err
	}

	// Event delivery is best-effort; a broker outage must not fail the
	// order that is already committed.
	ev := queue.OrderPlacedEvent{
		OrderID:    id,
		UserID:     p.ID,
		TotalCents: order.TotalCents,
		ItemCount:  len(order.Items),
		PlacedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.PublishOrderPlaced(ctx, ev); err != nil {
		c.Logger().Warnf("publish order.placed for order %d failed: %v", id, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id, "total_cents": order.TotalCents})
}

// ListMine returns the current principal's orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, p.ID)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": orders})
}

// ListAll returns every order. Admin only.
func (h *OrderHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.Orders.ListAll(ctx)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": orders})
}

// UpdateStatus moves an order to a new status. Admin only.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if !model.ValidOrderStatus(req.Status) {
		return apperror.BadRequestf("Invalid status: %s.", req.Status)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Orders.UpdateStatus(ctx, id, req.Status); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Order not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
