package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// AnnouncementRepo persists announcement rows. The row is committed
// before any fan-out is published so a broker outage never loses the
// announcement itself.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

// Insert stores an announcement and returns it with id and creation
// timestamp populated.
func (r *AnnouncementRepo) Insert(ctx context.Context, a model.Announcement) (model.Announcement, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO announcements (broadcast_id, title, body, audience, channels, created_by) VALUES (?,?,?,?,?,?)",
		a.BroadcastID, a.Title, a.Body, a.Audience, a.Channels, a.CreatedBy)
	if err != nil {
		return model.Announcement{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Announcement{}, err
	}
	var stored model.Announcement
	err = r.DB.QueryRowContext(ctx,
		"SELECT id, broadcast_id, title, body, audience, channels, created_by, created_at FROM announcements WHERE id=?",
		id).Scan(&stored.ID, &stored.BroadcastID, &stored.Title, &stored.Body,
		&stored.Audience, &stored.Channels, &stored.CreatedBy, &stored.CreatedAt)
	return stored, err
}

// List returns announcements newest first, capped by limit (default
// 50 when non-positive).
func (r *AnnouncementRepo) List(ctx context.Context, limit int) ([]model.Announcement, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, broadcast_id, title, body, audience, channels, created_by, created_at FROM announcements ORDER BY created_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Announcement
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.BroadcastID, &a.Title, &a.Body,
			&a.Audience, &a.Channels, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
