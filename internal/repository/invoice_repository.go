package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/billing"
	"github.com/iliyamo/gym-membership-api/internal/model"
)

// InvoiceRepo persists invoices. Invoice amounts are snapshots taken
// at generation time; later plan edits never rewrite them.
type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

const invoiceColumns = "id, reference, user_id, membership_record_id, plan_id, amount_cents, status, payment_mode, due_date, created_at"

// Create allocates the next INV-<year>-<seq> reference and inserts the
// invoice in one transaction. The counting SELECT runs FOR UPDATE so
// two concurrent generations serialize on the year's rows; the unique
// index on reference backstops any remaining race with ErrConflict,
// which callers may retry at whole-operation granularity.
func (r *InvoiceRepo) Create(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Invoice{}, err
	}
	defer func() { _ = tx.Rollback() }()

	year := time.Now().UTC().Year()
	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices WHERE reference LIKE ? FOR UPDATE",
		billing.ReferencePrefix(year)+"%").Scan(&seq); err != nil {
		return model.Invoice{}, err
	}
	reference := billing.FormatReference(year, seq+1)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO invoices (reference, user_id, membership_record_id, plan_id, amount_cents, status, payment_mode, due_date) VALUES (?,?,?,?,?,?,?,?)",
		reference, inv.UserID, inv.MembershipRecordID, inv.PlanID,
		inv.AmountCents, inv.Status, inv.PaymentMode, inv.DueDate)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Invoice{}, ErrConflict
		}
		return model.Invoice{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Invoice{}, err
	}

	var stored model.Invoice
	if err := tx.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id=?", id).
		Scan(&stored.ID, &stored.Reference, &stored.UserID, &stored.MembershipRecordID,
			&stored.PlanID, &stored.AmountCents, &stored.Status, &stored.PaymentMode,
			&stored.DueDate, &stored.CreatedAt); err != nil {
		return model.Invoice{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Invoice{}, err
	}
	return stored, nil
}

// ListByUser returns the member's invoices, newest first.
func (r *InvoiceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Invoice, error) {
	return r.list(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE user_id=? ORDER BY created_at DESC", userID)
}

// List returns all invoices, newest first, optionally filtered by
// status. An empty status returns everything.
func (r *InvoiceRepo) List(ctx context.Context, status string) ([]model.Invoice, error) {
	if status == "" {
		return r.list(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY created_at DESC")
	}
	return r.list(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE status=? ORDER BY created_at DESC", status)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Invoice, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Invoice
	for rows.Next() {
		var inv model.Invoice
		if err := rows.Scan(&inv.ID, &inv.Reference, &inv.UserID, &inv.MembershipRecordID,
			&inv.PlanID, &inv.AmountCents, &inv.Status, &inv.PaymentMode,
			&inv.DueDate, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateStatus mutates an invoice's status and payment mode. Status is
// never recomputed from the plan or record; it moves only through this
// call and MarkOverdue.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, id uint64, status, paymentMode string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invoices SET status=?, payment_mode=? WHERE id=?",
		status, paymentMode, id)
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

// MarkOverdue flips every pending invoice whose due date has passed to
// overdue and returns how many rows changed.
func (r *InvoiceRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE invoices SET status=? WHERE status=? AND due_date < ?",
		model.InvoiceOverdue, model.InvoicePending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SumPaidBetween totals paid invoice amounts created in [from, to),
// the dashboard's revenue metric.
func (r *InvoiceRepo) SumPaidBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var total sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(amount_cents) FROM invoices WHERE status=? AND created_at >= ? AND created_at < ?",
		model.InvoicePaid, from, to).Scan(&total)
	return total.Int64, err
}
