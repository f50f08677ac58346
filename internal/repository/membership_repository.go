package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// MembershipRepo persists membership records and implements
// ledger.Store. The deactivate-then-insert transition runs inside one
// transaction here, so ledger callers get the at-most-one-active
// invariant without managing *sql.Tx themselves.
type MembershipRepo struct{ DB *sql.DB }

func NewMembershipRepo(db *sql.DB) *MembershipRepo { return &MembershipRepo{DB: db} }

const membershipColumns = "id, user_id, plan_id, start_date, end_date, status, created_at"

// PlanByID satisfies ledger.Store. It reads only the columns the
// ledger needs to price and schedule a renewal.
func (r *MembershipRepo) PlanByID(ctx context.Context, id uint64) (model.MembershipPlan, error) {
	var p model.MembershipPlan
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, price_cents, duration_months, features, created_at, updated_at FROM membership_plans WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationMonths, &p.Features, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ActiveRecords returns every record for the user flagged active.
func (r *MembershipRepo) ActiveRecords(ctx context.Context, userID uint64) ([]model.MembershipRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM membership_records WHERE user_id=? AND status=?",
		userID, model.MembershipActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// ReplaceActive flips all of the user's active records to inactive and
// inserts rec as the sole active record, in a single transaction. The
// UPDATE takes row locks on the user's active records first, which
// serializes concurrent activations for the same user.
func (r *MembershipRepo) ReplaceActive(ctx context.Context, rec model.MembershipRecord) (model.MembershipRecord, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.MembershipRecord{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE membership_records SET status=? WHERE user_id=? AND status=?",
		model.MembershipInactive, rec.UserID, model.MembershipActive); err != nil {
		return model.MembershipRecord{}, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO membership_records (user_id, plan_id, start_date, end_date, status) VALUES (?,?,?,?,?)",
		rec.UserID, rec.PlanID, rec.StartDate, rec.EndDate, model.MembershipActive)
	if err != nil {
		return model.MembershipRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MembershipRecord{}, err
	}

	var stored model.MembershipRecord
	err = tx.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM membership_records WHERE id=?", id).
		Scan(&stored.ID, &stored.UserID, &stored.PlanID, &stored.StartDate,
			&stored.EndDate, &stored.Status, &stored.CreatedAt)
	if err != nil {
		return model.MembershipRecord{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.MembershipRecord{}, err
	}
	return stored, nil
}

// DeactivateAll flips every active record of the user to inactive.
// Touching zero rows is a successful no-op.
func (r *MembershipRepo) DeactivateAll(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE membership_records SET status=? WHERE user_id=? AND status=?",
		model.MembershipInactive, userID, model.MembershipActive)
	return err
}

// ListByUser returns the user's full record history, newest first.
// This is the input to ledger.DeriveStatus.
func (r *MembershipRepo) ListByUser(ctx context.Context, userID uint64) ([]model.MembershipRecord, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM membership_records WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemberships(rows)
}

// CountActivatedBetween counts records created in [from, to), used by
// the dashboard's activations metric.
func (r *MembershipRepo) CountActivatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM membership_records WHERE created_at >= ? AND created_at < ?",
		from, to).Scan(&n)
	return n, err
}

func scanMemberships(rows *sql.Rows) ([]model.MembershipRecord, error) {
	var out []model.MembershipRecord
	for rows.Next() {
		var m model.MembershipRecord
		if err := rows.Scan(&m.ID, &m.UserID, &m.PlanID, &m.StartDate,
			&m.EndDate, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
