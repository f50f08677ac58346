package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/handler"
	"github.com/iliyamo/gym-membership-api/internal/middleware"
)

// RegisterMember registers the endpoints available to every
// authenticated account. Admins pass the role check too, so front
// desk staff can use the same self-service endpoints as members.
func RegisterMember(
	e *echo.Echo,
	jwtSecret string,
	m *handler.MembershipHandler,
	at *handler.AttendanceHandler,
	inv *handler.InvoiceHandler,
	an *handler.AnnouncementHandler,
) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("MEMBER", "ADMIN"))

	// Own membership status, derived from the record history.
	g.GET("/membership/status", m.MyStatus)

	// Attendance self-service: one check-in per day, check-out closes
	// the latest open visit.
	g.POST("/attendance/check-in", at.CheckIn)
	g.POST("/attendance/check-out", at.CheckOut)

	// Own invoices and the announcement feed.
	g.GET("/invoices", inv.ListMine)
	g.GET("/announcements", an.List)
}
