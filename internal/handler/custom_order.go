package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
)

// CustomOrderHandler serves made-to-measure requests.
type CustomOrderHandler struct {
	CustomOrders *repository.CustomOrderRepo
}

func NewCustomOrderHandler(r *repository.CustomOrderRepo) *CustomOrderHandler {
	return &CustomOrderHandler{CustomOrders: r}
}

type customOrderReq struct {
	Garment      string `json:"garment"`
	Measurements string `json:"measurements"`
	Notes        string `json:"notes"`
}
type customOrderStatusReq struct {
	Status string `json:"status"`
}

// Create submits a request for the current principal.
func (h *CustomOrderHandler) Create(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}

	var req customOrderReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	var v apperror.ValidationError
	if strings.TrimSpace(req.Garment) == "" {
		v.Add("garment", "Garment is required")
	}
	if strings.TrimSpace(req.Measurements) == "" {
		v.Add("measurements", "Measurements are required")
	}
	if v.HasErrors() {
		return &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.CustomOrders.Create(ctx, model.CustomOrder{
		UserID:       p.ID,
		Garment:      req.Garment,
		Measurements: req.Measurements,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// ListMine returns the current principal's requests.
func (h *CustomOrderHandler) ListMine(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperror.Unauthorized("Login required to access this resource.")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.CustomOrders.ListByUser(ctx, p.ID)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []model.CustomOrder{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "custom_orders": orders})
}

// ListAll returns every request. Admin only.
func (h *CustomOrderHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	orders, err := h.CustomOrders.ListAll(ctx)
	if err != nil {
		return err
	}
	if orders == nil {
		orders = []model.CustomOrder{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "custom_orders": orders})
}

// UpdateStatus moves a request to a new status. Admin only.
func (h *CustomOrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req customOrderStatusReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if !model.ValidCustomOrderStatus(req.Status) {
		return apperror.BadRequestf("Invalid status: %s.", req.Status)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.CustomOrders.UpdateStatus(ctx, id, req.Status); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Custom order not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
