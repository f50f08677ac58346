package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// PlanRepo provides CRUD for membership plans. Plans are reference
// data: the ledger reads them to compute renewal end dates, invoices
// snapshot their price. The seeded "No Plan" sentinel must never be
// deleted; it is how members without a paid subscription are
// represented.
type PlanRepo struct{ DB *sql.DB }

func NewPlanRepo(db *sql.DB) *PlanRepo { return &PlanRepo{DB: db} }

const planColumns = "id, name, price_cents, duration_months, features, created_at, updated_at"

// Create inserts a plan and returns the stored row.
func (r *PlanRepo) Create(ctx context.Context, name string, priceCents int64, durationMonths int, features string) (model.MembershipPlan, error) {
	name = strings.TrimSpace(name)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO membership_plans (name, price_cents, duration_months, features) VALUES (?,?,?,?)",
		name, priceCents, durationMonths, features)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.MembershipPlan{}, ErrConflict
		}
		return model.MembershipPlan{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.MembershipPlan{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// Update rewrites the mutable plan fields. Existing membership records
// keep their computed dates; invoices keep their snapshotted amounts.
func (r *PlanRepo) Update(ctx context.Context, id uint64, name string, priceCents int64, durationMonths int, features string) (model.MembershipPlan, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE membership_plans SET name=?, price_cents=?, duration_months=?, features=?, updated_at=NOW() WHERE id=?",
		strings.TrimSpace(name), priceCents, durationMonths, features, id)
	if err != nil {
		return model.MembershipPlan{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.MembershipPlan{}, err
	} else if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-change
		// update; distinguish with a follow-up read
		if _, err := r.GetByID(ctx, id); err != nil {
			if err == sql.ErrNoRows {
				return model.MembershipPlan{}, ErrNotFound
			}
			return model.MembershipPlan{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a plan. It refuses with ErrConflict while membership
// records still reference the plan, so history stays resolvable.
func (r *PlanRepo) Delete(ctx context.Context, id uint64) error {
	var n int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM membership_records WHERE plan_id=?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, "DELETE FROM membership_plans WHERE id=?", id)
	if err != nil {
		return err
	}
	if aff, err := res.RowsAffected(); err != nil {
		return err
	} else if aff == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a single plan or sql.ErrNoRows.
func (r *PlanRepo) GetByID(ctx context.Context, id uint64) (model.MembershipPlan, error) {
	var p model.MembershipPlan
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM membership_plans WHERE id=? LIMIT 1", id).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationMonths, &p.Features, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns all plans ordered by price ascending, the order the
// public pricing page displays them in.
func (r *PlanRepo) List(ctx context.Context) ([]model.MembershipPlan, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+planColumns+" FROM membership_plans ORDER BY price_cents ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MembershipPlan
	for rows.Next() {
		var p model.MembershipPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationMonths, &p.Features, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MapByID returns every plan keyed by id, the lookup shape
// ledger.DeriveStatus consumes.
func (r *PlanRepo) MapByID(ctx context.Context) (map[uint64]model.MembershipPlan, error) {
	plans, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]model.MembershipPlan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return m, nil
}
