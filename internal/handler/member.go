package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/ledger"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// MemberHandler gives admins a view over the member roster with each
// member's derived entitlement, plus activate/deactivate of accounts.
type MemberHandler struct {
	Users       *repository.UserRepo
	Memberships *repository.MembershipRepo
	Plans       *repository.PlanRepo
	Tokens      *repository.TokenRepo
}

func NewMemberHandler(users *repository.UserRepo, memberships *repository.MembershipRepo, plans *repository.PlanRepo, tokens *repository.TokenRepo) *MemberHandler {
	if users == nil || memberships == nil || plans == nil || tokens == nil {
		panic("nil dependency passed to NewMemberHandler")
	}
	return &MemberHandler{Users: users, Memberships: memberships, Plans: plans, Tokens: tokens}
}

type memberResp struct {
	ID            uint64 `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	IsActive      bool   `json:"is_active"`
	Status        string `json:"membership_status"`
	RemainingDays int    `json:"remaining_days"`
	JoinedAt      string `json:"joined_at"`
}

// List handles GET /v1/admin/members with an optional ?search= over
// name and email and a ?limit= cap.
func (h *MemberHandler) List(c echo.Context) error {
	search := strings.TrimSpace(c.QueryParam("search"))
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, search, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	plans, err := h.Plans.MapByID(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	now := time.Now()
	out := make([]memberResp, 0, len(users))
	for _, u := range users {
		records, err := h.Memberships.ListByUser(ctx, u.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		ent := ledger.DeriveStatus(records, plans, now)
		out = append(out, memberResp{
			ID:            u.ID,
			FullName:      u.FullName,
			Email:         u.Email,
			Phone:         u.Phone,
			Role:          u.Role,
			IsActive:      u.IsActive,
			Status:        string(ent.Status),
			RemainingDays: ent.RemainingDays,
			JoinedAt:      u.CreatedAt.Format(dateLayout),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": out})
}

// SetActive handles PATCH /v1/admin/members/:id/active. Disabling an
// account also revokes its refresh tokens so existing sessions die at
// access-token expiry.
func (h *MemberHandler) SetActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active (bool) is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, *req.Active); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update member failed"})
	}
	if !*req.Active {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			c.Logger().Errorf("revoke tokens for disabled user %d: %v", id, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
