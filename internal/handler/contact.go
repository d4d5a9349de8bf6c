package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iamsahan/threadly/internal/apperror"
	"github.com/iamsahan/threadly/internal/model"
	"github.com/iamsahan/threadly/internal/repository"
)

// ContactHandler serves the public contact form and its admin views.
type ContactHandler struct {
	Contacts *repository.ContactRepo
}

func NewContactHandler(r *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{Contacts: r}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Create accepts a contact-form submission. Public.
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return apperror.BadRequest("Invalid request body.")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var v apperror.ValidationError
	if strings.TrimSpace(req.Name) == "" {
		v.Add("name", "Name is required")
	}
	if req.Email == "" {
		v.Add("email", "Email is required")
	} else if !emailPattern.MatchString(req.Email) {
		v.Add("email", "Email is not valid")
	}
	if strings.TrimSpace(req.Message) == "" {
		v.Add("message", "Message is required")
	}
	if v.HasErrors() {
		return &v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	id, err := h.Contacts.Create(ctx, model.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// List returns all submissions. Admin only.
func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	contacts, err := h.Contacts.List(ctx)
	if err != nil {
		return err
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "contacts": contacts})
}

// Delete removes a submission. Admin only.
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Contacts.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return apperror.NotFound("Contact not found.")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
