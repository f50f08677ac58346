package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// AttendanceRepo persists gym visits and implements attendance.Store.
type AttendanceRepo struct{ DB *sql.DB }

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{DB: db} }

// HasCheckInSince reports whether the user has any visit starting at
// or after the given instant, open or closed.
func (r *AttendanceRepo) HasCheckInSince(ctx context.Context, userID uint64, since time.Time) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE user_id=? AND check_in >= ?",
		userID, since).Scan(&n)
	return n > 0, err
}

// LatestOpen returns the most recent visit with a null check-out, or
// sql.ErrNoRows when the user is not inside.
func (r *AttendanceRepo) LatestOpen(ctx context.Context, userID uint64) (model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	var out sql.NullTime
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, check_in, check_out FROM attendance_records WHERE user_id=? AND check_out IS NULL ORDER BY check_in DESC LIMIT 1",
		userID).Scan(&rec.ID, &rec.UserID, &rec.CheckIn, &out)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if out.Valid {
		t := out.Time
		rec.CheckOut = &t
	}
	return rec, nil
}

// Insert stores a new visit and returns it with the id populated.
func (r *AttendanceRepo) Insert(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO attendance_records (user_id, check_in) VALUES (?,?)",
		rec.UserID, rec.CheckIn)
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	rec.ID = uint64(id)
	return rec, nil
}

// Close sets the check-out timestamp. The check_out IS NULL guard
// makes the mutation single-shot even under a retried request.
func (r *AttendanceRepo) Close(ctx context.Context, id uint64, out time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE attendance_records SET check_out=? WHERE id=? AND check_out IS NULL",
		out, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// VisitDetail is an attendance row joined with the visiting member,
// returned by ListBetween for the admin overview.
type VisitDetail struct {
	ID       uint64     `json:"id"`
	UserID   uint64     `json:"user_id"`
	FullName string     `json:"full_name"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out,omitempty"`
}

// ListBetween returns visits with check-in inside [from, to), newest
// first, joined with member names for display.
func (r *AttendanceRepo) ListBetween(ctx context.Context, from, to time.Time) ([]VisitDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT a.id, a.user_id, u.full_name, a.check_in, a.check_out
		 FROM attendance_records a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.check_in >= ? AND a.check_in < ?
		 ORDER BY a.check_in DESC`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VisitDetail
	for rows.Next() {
		var v VisitDetail
		var co sql.NullTime
		if err := rows.Scan(&v.ID, &v.UserID, &v.FullName, &v.CheckIn, &co); err != nil {
			return nil, err
		}
		if co.Valid {
			t := co.Time
			v.CheckOut = &t
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CountBetween counts visits with check-in inside [from, to), used by
// the dashboard's attendance metric.
func (r *AttendanceRepo) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE check_in >= ? AND check_in < ?",
		from, to).Scan(&n)
	return n, err
}
