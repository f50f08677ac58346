package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/ledger"
	"github.com/iliyamo/gym-membership-api/internal/model"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// MembershipHandler exposes the membership ledger: entitlement reads
// for members and admins, and the activate/deactivate transitions for
// admins.
type MembershipHandler struct {
	Ledger      *ledger.Service
	Memberships *repository.MembershipRepo
	Plans       *repository.PlanRepo
}

func NewMembershipHandler(svc *ledger.Service, memberships *repository.MembershipRepo, plans *repository.PlanRepo) *MembershipHandler {
	if svc == nil || memberships == nil || plans == nil {
		panic("nil dependency passed to NewMembershipHandler")
	}
	return &MembershipHandler{Ledger: svc, Memberships: memberships, Plans: plans}
}

type activateReq struct {
	UserID uint64 `json:"user_id"`
	PlanID uint64 `json:"plan_id"`
	// Optional admin override; both must be given as YYYY-MM-DD or
	// neither.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type membershipResp struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	PlanID    uint64    `json:"plan_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const dateLayout = "2006-01-02"

func toMembershipResp(m model.MembershipRecord) membershipResp {
	return membershipResp{
		ID:        m.ID,
		UserID:    m.UserID,
		PlanID:    m.PlanID,
		StartDate: m.StartDate.Format(dateLayout),
		EndDate:   m.EndDate.Format(dateLayout),
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// Activate handles POST /v1/admin/memberships/activate. Stacking and
// date math live in the ledger; this handler only parses and maps
// errors onto status codes.
func (h *MembershipHandler) Activate(c echo.Context) error {
	var req activateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == 0 || req.PlanID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and plan_id required"})
	}

	var start, end *time.Time
	if req.StartDate != "" {
		t, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		start = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		end = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Ledger.Activate(ctx, req.UserID, req.PlanID, start, end)
	if err != nil {
		switch err {
		case ledger.ErrPlanNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "plan not found"})
		case ledger.ErrInvalidInterval:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date and end_date must form a valid interval"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate failed"})
		}
	}
	return c.JSON(http.StatusCreated, toMembershipResp(rec))
}

// Deactivate handles POST /v1/admin/memberships/:user_id/deactivate.
// Deactivating a user with no active records is a successful no-op.
func (h *MembershipHandler) Deactivate(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Deactivate(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MyStatus handles GET /v1/membership/status for the authenticated
// member: derived entitlement plus record history.
func (h *MembershipHandler) MyStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return h.statusFor(c, userID)
}

// StatusFor handles GET /v1/admin/memberships/:user_id, the admin view
// of any member's entitlement.
func (h *MembershipHandler) StatusFor(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	return h.statusFor(c, userID)
}

func (h *MembershipHandler) statusFor(c echo.Context, userID uint64) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.Memberships.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	plans, err := h.Plans.MapByID(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	ent := ledger.DeriveStatus(records, plans, time.Now())

	history := make([]membershipResp, 0, len(records))
	for _, r := range records {
		history = append(history, toMembershipResp(r))
	}
	resp := echo.Map{
		"status":         ent.Status,
		"remaining_days": ent.RemainingDays,
		"history":        history,
	}
	if ent.Record != nil {
		if p, ok := plans[ent.Record.PlanID]; ok {
			resp["plan"] = toPlanResp(p)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
