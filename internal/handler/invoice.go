package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/billing"
	"github.com/iliyamo/gym-membership-api/internal/model"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// InvoiceHandler exposes invoice generation and status management for
// admins, and the own-invoice listing for members.
type InvoiceHandler struct {
	Invoices    *repository.InvoiceRepo
	Users       *repository.UserRepo
	Memberships *repository.MembershipRepo
	Plans       *repository.PlanRepo
}

func NewInvoiceHandler(invoices *repository.InvoiceRepo, users *repository.UserRepo, memberships *repository.MembershipRepo, plans *repository.PlanRepo) *InvoiceHandler {
	if invoices == nil || users == nil || memberships == nil || plans == nil {
		panic("nil dependency passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Invoices: invoices, Users: users, Memberships: memberships, Plans: plans}
}

type generateInvoiceReq struct {
	UserID      uint64 `json:"user_id"`
	PaymentMode string `json:"payment_mode"`
	DueDate     string `json:"due_date"` // optional YYYY-MM-DD
}

type invoiceStatusReq struct {
	Status      string `json:"status"`
	PaymentMode string `json:"payment_mode"`
}

// Generate handles POST /v1/admin/invoices. The invoice bills the
// member's latest membership record and snapshots the plan price at
// this moment; later plan edits do not change it.
func (h *InvoiceHandler) Generate(c echo.Context) error {
	var req generateInvoiceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id required"})
	}
	var due time.Time
	if req.DueDate != "" {
		t, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be YYYY-MM-DD"})
		}
		due = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	records, err := h.Memberships.ListByUser(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(records) == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "user has no membership record to bill"})
	}
	latest := records[0] // ListByUser orders newest first
	plan, err := h.Plans.GetByID(ctx, latest.PlanID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	inv := billing.NewInvoice(user, latest, plan, strings.TrimSpace(req.PaymentMode), due, time.Now())
	stored, err := h.Invoices.Create(ctx, inv)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invoice numbering conflict, retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create invoice failed"})
	}
	return c.JSON(http.StatusCreated, stored)
}

// List handles GET /v1/admin/invoices with an optional ?status=
// filter.
func (h *InvoiceHandler) List(c echo.Context) error {
	status := strings.TrimSpace(c.QueryParam("status"))
	switch status {
	case "", model.InvoicePending, model.InvoicePaid, model.InvoiceOverdue:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invoices, err := h.Invoices.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": invoices})
}

// ListMine handles GET /v1/invoices for the authenticated member.
func (h *InvoiceHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invoices, err := h.Invoices.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"invoices": invoices})
}

// UpdateStatus handles PATCH /v1/admin/invoices/:id.
func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	var req invoiceStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Status {
	case model.InvoicePending, model.InvoicePaid, model.InvoiceOverdue:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be pending, paid or overdue"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Invoices.UpdateStatus(ctx, id, req.Status, strings.TrimSpace(req.PaymentMode)); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update invoice failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkOverdue handles POST /v1/admin/invoices/mark-overdue, flipping
// every pending invoice past its due date.
func (h *InvoiceHandler) MarkOverdue(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Invoices.MarkOverdue(ctx, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mark overdue failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"marked": n})
}
