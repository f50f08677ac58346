package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv" // Loads .env files into the environment
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/attendance"
	"github.com/iliyamo/gym-membership-api/internal/config"
	"github.com/iliyamo/gym-membership-api/internal/database"
	"github.com/iliyamo/gym-membership-api/internal/handler"
	"github.com/iliyamo/gym-membership-api/internal/ledger"
	"github.com/iliyamo/gym-membership-api/internal/middleware"
	"github.com/iliyamo/gym-membership-api/internal/notify"
	"github.com/iliyamo/gym-membership-api/internal/queue"
	"github.com/iliyamo/gym-membership-api/internal/repository"
	"github.com/iliyamo/gym-membership-api/internal/router"
)

func main() {
	// .env is optional; in production the variables come from the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the public plan cache. A nil
	// client disables both rather than failing startup.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	plans := repository.NewPlanRepo(db)
	memberships := repository.NewMembershipRepo(db)
	visits := repository.NewAttendanceRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	announcements := repository.NewAnnouncementRepo(db)

	ledgerSvc := ledger.NewService(memberships)
	tracker := attendance.NewService(visits)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	planH := handler.NewPlanHandler(plans)
	membershipH := handler.NewMembershipHandler(ledgerSvc, memberships, plans)
	attendanceH := handler.NewAttendanceHandler(tracker, visits)
	invoiceH := handler.NewInvoiceHandler(invoices, users, memberships, plans)
	announcementH := handler.NewAnnouncementHandler(announcements, users)
	dashboardH := handler.NewDashboardHandler(users, memberships, invoices, visits)
	memberH := handler.NewMemberHandler(users, memberships, plans, tokens)

	e := echo.New()
	if rdb != nil {
		if rl := config.LoadRateLimitConfig(); rl.Enabled {
			e.Use(middleware.NewRateLimit(rl, rdb))
		}
	}

	var planCache echo.MiddlewareFunc
	if rdb != nil {
		if cc := config.LoadCacheConfig(); cc.Enabled {
			planCache = middleware.NewResponseCache(cc, rdb)
		}
	}

	router.RegisterRoutes(e)
	router.RegisterPublic(e, planH, planCache)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterMember(e, cfg.JWTSecret, membershipH, attendanceH, invoiceH, announcementH)
	router.RegisterAdmin(e, cfg.JWTSecret, planH, membershipH, memberH, attendanceH, invoiceH, announcementH, dashboardH)

	// Broadcast consumer runs for the life of the process and
	// reconnects on broker failure.
	go func() {
		if err := queue.StartBroadcastConsumer(queue.Senders{
			"whatsapp": notify.NewWhatsAppSender(),
			"email":    notify.NewEmailSender(),
			"push":     notify.NewPushSender(),
		}); err != nil {
			log.Printf("broadcast consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
