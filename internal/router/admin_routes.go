package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/handler"
	"github.com/iliyamo/gym-membership-api/internal/middleware"
)

// RegisterAdmin registers the management surface under /v1/admin.
// Every route requires a valid access token carrying the ADMIN role.
func RegisterAdmin(
	e *echo.Echo,
	jwtSecret string,
	p *handler.PlanHandler,
	m *handler.MembershipHandler,
	mb *handler.MemberHandler,
	at *handler.AttendanceHandler,
	inv *handler.InvoiceHandler,
	an *handler.AnnouncementHandler,
	d *handler.DashboardHandler,
) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	// Plan catalogue management. The public listing lives in
	// RegisterPublic; these mutate it.
	g.POST("/plans", p.Create)
	g.PUT("/plans/:id", p.Update)
	g.DELETE("/plans/:id", p.Delete)

	// Member roster and account state.
	g.GET("/members", mb.List)
	g.PATCH("/members/:id/active", mb.SetActive)

	// Membership lifecycle on behalf of a member.
	g.POST("/memberships/activate", m.Activate)
	g.POST("/memberships/:user_id/deactivate", m.Deactivate)
	g.GET("/memberships/:user_id", m.StatusFor)

	// Front desk attendance view.
	g.GET("/attendance", at.ListToday)

	// Invoicing.
	g.POST("/invoices", inv.Generate)
	g.GET("/invoices", inv.List)
	g.PATCH("/invoices/:id", inv.UpdateStatus)
	g.POST("/invoices/mark-overdue", inv.MarkOverdue)

	// Announcements fan out through the broker after commit.
	g.POST("/announcements", an.Create)

	// Month-over-month analytics snapshot.
	g.GET("/dashboard", d.Overview)
}
