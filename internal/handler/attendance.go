package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/attendance"
	"github.com/iliyamo/gym-membership-api/internal/ledger"
	"github.com/iliyamo/gym-membership-api/internal/repository"
)

// AttendanceHandler exposes check-in/check-out for members and the
// visit overview for admins.
type AttendanceHandler struct {
	Tracker *attendance.Service
	Visits  *repository.AttendanceRepo
}

func NewAttendanceHandler(tracker *attendance.Service, visits *repository.AttendanceRepo) *AttendanceHandler {
	if tracker == nil || visits == nil {
		panic("nil dependency passed to NewAttendanceHandler")
	}
	return &AttendanceHandler{Tracker: tracker, Visits: visits}
}

type visitResp struct {
	ID       uint64     `json:"id"`
	UserID   uint64     `json:"user_id"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// CheckIn handles POST /v1/attendance/check-in. A second check-in on
// the same day is an expected member outcome, answered with 409 and
// not logged as an error.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Tracker.CheckIn(ctx, userID, time.Now())
	if err != nil {
		if err == attendance.ErrAlreadyCheckedIn {
			return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in today"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	return c.JSON(http.StatusCreated, visitResp{ID: rec.ID, UserID: rec.UserID, CheckIn: rec.CheckIn})
}

// CheckOut handles POST /v1/attendance/check-out. Checking out with no
// open visit is answered with 404.
func (h *AttendanceHandler) CheckOut(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Tracker.CheckOut(ctx, userID, time.Now())
	if err != nil {
		if err == attendance.ErrNoOpenCheckIn {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no open check-in"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-out failed"})
	}
	return c.JSON(http.StatusOK, visitResp{ID: rec.ID, UserID: rec.UserID, CheckIn: rec.CheckIn, CheckOut: rec.CheckOut})
}

// ListToday handles GET /v1/admin/attendance. The optional ?date=
// query (YYYY-MM-DD) selects another day; default is today.
func (h *AttendanceHandler) ListToday(c echo.Context) error {
	day := time.Now()
	if q := c.QueryParam("date"); q != "" {
		t, err := time.Parse(dateLayout, q)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		day = t
	}
	from := ledger.StartOfDay(day)
	to := from.AddDate(0, 0, 1)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	visits, err := h.Visits.ListBetween(ctx, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": from.Format(dateLayout), "visits": visits})
}
