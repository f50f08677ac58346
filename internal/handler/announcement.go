package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-membership-api/internal/model"
	"github.com/iliyamo/gym-membership-api/internal/notify"
	"github.com/iliyamo/gym-membership-api/internal/queue"
	"github.com/iliyamo/gym-membership-api/internal/repository"
	queue_publisher "github.com/iliyamo/gym-membership-api/internal/service"
)

// AnnouncementHandler lets admins post broadcast announcements and
// anyone authenticated read the recent ones. Posting commits the row
// first and only then hands the fan-out to the broker; a broker outage
// therefore never loses the announcement itself.
type AnnouncementHandler struct {
	Announcements *repository.AnnouncementRepo
	Users         *repository.UserRepo
}

func NewAnnouncementHandler(announcements *repository.AnnouncementRepo, users *repository.UserRepo) *AnnouncementHandler {
	if announcements == nil || users == nil {
		panic("nil dependency passed to NewAnnouncementHandler")
	}
	return &AnnouncementHandler{Announcements: announcements, Users: users}
}

type createAnnouncementReq struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Audience string   `json:"audience"`
	Channels []string `json:"channels"`
}

func (r *createAnnouncementReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	r.Audience = strings.ToUpper(strings.TrimSpace(r.Audience))
	if r.Title == "" || r.Body == "" {
		return "title and body are required"
	}
	if r.Audience == "" {
		r.Audience = model.AudienceAll
	}
	switch r.Audience {
	case model.AudienceAll, model.AudienceMembers, model.AudienceAdmins:
	default:
		return "audience must be ALL, MEMBERS or ADMINS"
	}
	if len(r.Channels) == 0 {
		r.Channels = []string{model.ChannelPush}
	}
	for i, ch := range r.Channels {
		ch = strings.ToLower(strings.TrimSpace(ch))
		switch ch {
		case model.ChannelWhatsApp, model.ChannelEmail, model.ChannelPush:
			r.Channels[i] = ch
		default:
			return "unknown channel: " + ch
		}
	}
	return ""
}

// Create handles POST /v1/admin/announcements.
func (h *AnnouncementHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createAnnouncementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Announcements.Insert(ctx, model.Announcement{
		BroadcastID: uuid.NewString(),
		Title:       req.Title,
		Body:        req.Body,
		Audience:    req.Audience,
		Channels:    strings.Join(req.Channels, ","),
		CreatedBy:   userID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create announcement failed"})
	}

	contacts, err := h.Users.ListContacts(ctx, stored.Audience)
	if err != nil {
		// Row is already committed; report the partial outcome
		// instead of pretending the fan-out was queued.
		c.Logger().Errorf("announcement %s: resolve recipients: %v", stored.BroadcastID, err)
		return c.JSON(http.StatusCreated, echo.Map{"announcement": stored, "queued": false})
	}
	recipients := make([]notify.Recipient, 0, len(contacts))
	for _, ct := range contacts {
		recipients = append(recipients, notify.Recipient{
			UserID:   ct.UserID,
			FullName: ct.FullName,
			Email:    ct.Email,
			Phone:    ct.Phone,
		})
	}

	event := queue.AnnouncementBroadcastEvent{
		BroadcastID: stored.BroadcastID,
		Title:       stored.Title,
		Body:        stored.Body,
		Audience:    stored.Audience,
		Channels:    req.Channels,
		Recipients:  recipients,
		CreatedAt:   stored.CreatedAt.UTC().Format(time.RFC3339),
	}
	queued := true
	if err := queue_publisher.PublishAnnouncementBroadcast(ctx, event); err != nil {
		queued = false
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"announcement": stored,
		"queued":       queued,
		"recipients":   len(recipients),
	})
}

// List handles GET /v1/announcements. ?limit= caps the page size.
func (h *AnnouncementHandler) List(c echo.Context) error {
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

	items, err := h.Announcements.List(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"announcements": items})
}
