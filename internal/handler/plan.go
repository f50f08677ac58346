package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/model"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// PlanHandler exposes the membership plan catalog: a public listing
// for the pricing page and admin CRUD.
type PlanHandler struct {
	Plans *repository.PlanRepo
}

func NewPlanHandler(plans *repository.PlanRepo) *PlanHandler {
	if plans == nil {
		panic("nil repository passed to NewPlanHandler")
	}
	return &PlanHandler{Plans: plans}
}

type planReq struct {
	Name           string   `json:"name"`
	PriceCents     int64    `json:"price_cents"`
	DurationMonths int      `json:"duration_months"`
	Features       []string `json:"features"`
}

type planResp struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"price_cents"`
	DurationMonths int      `json:"duration_months"`
	Features       []string `json:"features"`
}

func toPlanResp(p model.MembershipPlan) planResp {
	var features []string
	// features are stored as a JSON array; a malformed value renders
	// as an empty list rather than failing the whole response
	_ = json.Unmarshal([]byte(p.Features), &features)
	return planResp{
		ID:             p.ID,
		Name:           p.Name,
		PriceCents:     p.PriceCents,
		DurationMonths: p.DurationMonths,
		Features:       features,
	}
}

func (req *planReq) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if req.DurationMonths < 1 {
		return "duration_months must be at least 1"
	}
	return ""
}

// List handles GET /v1/plans. Public; sits behind the response cache.
func (h *PlanHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	plans, err := h.Plans.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]planResp, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"plans": out})
}

// Create handles POST /v1/admin/plans.
func (h *PlanHandler) Create(c echo.Context) error {
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	features, _ := json.Marshal(req.Features)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Plans.Create(ctx, req.Name, req.PriceCents, req.DurationMonths, string(features))
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plan name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create plan failed"})
	}
	return c.JSON(http.StatusCreated, toPlanResp(p))
}

// Update handles PUT/PATCH /v1/admin/plans/:id.
func (h *PlanHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	var req planReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	features, _ := json.Marshal(req.Features)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Plans.Update(ctx, id, req.Name, req.PriceCents, req.DurationMonths, string(features))
	if err != nil {
		if err == repository.ErrNotFound || err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update plan failed"})
	}
	return c.JSON(http.StatusOK, toPlanResp(p))
}

// Delete handles DELETE /v1/admin/plans/:id. Plans still referenced by
// membership records cannot be deleted.
func (h *PlanHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid plan id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Plans.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "plan has membership records"})
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete plan failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
