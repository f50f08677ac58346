package model

import "time"

// Invoice statuses. Status is mutated independently after creation
// and never recomputed from the referenced plan or record.
const (
	InvoicePending = "pending"
	InvoicePaid    = "paid"
	InvoiceOverdue = "overdue"
)

// Invoice is a billing document generated by an administrator for a
// membership interval. The amount is a snapshot of the plan price at
// generation time, so later plan edits do not rewrite history.
//
// Fields:
//  ID                 – primary key identifier.
//  Reference          – human-facing number, INV-<year>-<seq>, unique.
//  UserID             – billed member.
//  MembershipRecordID – subscription interval the invoice covers.
//  PlanID             – plan at generation time.
//  AmountCents        – snapshotted amount in cents.
//  Status             – pending, paid or overdue.
//  PaymentMode        – free-form payment channel (cash, card, transfer).
//  DueDate            – payment deadline (date precision).
//  CreatedAt          – creation timestamp.
type Invoice struct {
	ID                 uint64    // invoices.id
	Reference          string    // invoices.reference
	UserID             uint64    // invoices.user_id
	MembershipRecordID uint64    // invoices.membership_record_id
	PlanID             uint64    // invoices.plan_id
	AmountCents        int64     // invoices.amount_cents
	Status             string    // invoices.status
	PaymentMode        string    // invoices.payment_mode
	DueDate            time.Time // invoices.due_date
	CreatedAt          time.Time // invoices.created_at
}
