package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/billing"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// DashboardHandler serves the admin analytics snapshot: this month's
// signups, activations, visits and paid revenue, each with a delta
// against the previous calendar month.
type DashboardHandler struct {
	Users       *repository.UserRepo
	Memberships *repository.MembershipRepo
	Invoices    *repository.InvoiceRepo
	Attendance  *repository.AttendanceRepo
}

func NewDashboardHandler(users *repository.UserRepo, memberships *repository.MembershipRepo, invoices *repository.InvoiceRepo, attendance *repository.AttendanceRepo) *DashboardHandler {
	if users == nil || memberships == nil || invoices == nil || attendance == nil {
		panic("nil dependency passed to NewDashboardHandler")
	}
	return &DashboardHandler{Users: users, Memberships: memberships, Invoices: invoices, Attendance: attendance}
}

// Overview handles GET /v1/admin/dashboard.
func (h *DashboardHandler) Overview(c echo.Context) error {
	curFrom, curTo, prevFrom, prevTo := billing.MonthWindows(time.Now())

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	type counter func(context.Context, time.Time, time.Time) (int64, error)
	pair := func(count counter) (billing.Metric, error) {
		cur, err := count(ctx, curFrom, curTo)
		if err != nil {
			return billing.Metric{}, err
		}
		prev, err := count(ctx, prevFrom, prevTo)
		if err != nil {
			return billing.Metric{}, err
		}
		return billing.NewMetric(cur, prev), nil
	}

	signups, err := pair(h.Users.CountCreatedBetween)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	activations, err := pair(h.Memberships.CountActivatedBetween)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	visits, err := pair(h.Attendance.CountBetween)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	revenue, err := pair(h.Invoices.SumPaidBetween)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"period": echo.Map{
			"from": curFrom.Format(dateLayout),
			"to":   curTo.Format(dateLayout),
		},
		"signups":            signups,
		"activations":        activations,
		"visits":             visits,
		"paid_revenue_cents": revenue,
	})
}
