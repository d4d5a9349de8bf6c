package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
)

// ProductHandler serves the catalog: public browsing plus admin CRUD.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

type productReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PriceCents  uint32 `json:"price_cents"`
	Stock       uint32 `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func (r productReq) validate() error {
	var v apperror.ValidationError
	if r.Name == "" {
		v.Add("name", "Product name is required")
	}
	if r.PriceCents == 0 {
		v.Add("price_cents", "Price must be greater than zero")
	}
	if v.HasErrors() {
		return &v
	}
	return nil
}

// List returns the catalog, optionally filtered by ?category=.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	products, err := h.Products.List(ctx, c.QueryParam("category"))
	if err != nil {
		return err
	}
	if products == nil {
		products = []model.Product{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": products})
}

// Get returns one product by id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.Get(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Product not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

// Create adds a catalog item. Admin only.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Products.Create(ctx, model.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// Update rewrites a catalog item. Admin only.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	err = h.Products.Update(ctx, model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Product not found.")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes a catalog item. Admin only.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Product not found.")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses a numeric path parameter, classifying a parse failure as a
// 400 naming the offending field.
func pathID(c echo.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.InvalidID(name, raw)
	}
	return id, nil
}
