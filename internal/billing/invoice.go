// Package billing holds the pure pieces of invoicing and dashboard
// analytics: reference numbering, plan-price snapshotting and
// period-over-period deltas. Persistence stays in the repository
// layer.
package billing

import (
	"fmt"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// DefaultDueDays is how long after generation an invoice falls due
// when the admin does not pick a date.
const DefaultDueDays = 14

// ReferencePrefix returns the shared prefix of all invoice references
// issued in the given year, e.g. "INV-2026-".
func ReferencePrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// FormatReference renders a full invoice reference, zero-padding the
// per-year sequence to four digits: INV-2026-0007.
func FormatReference(year int, seq int64) string {
	return fmt.Sprintf("%s%04d", ReferencePrefix(year), seq)
}

// NewInvoice builds an unsaved invoice for a membership interval,
// snapshotting the plan's current price. The snapshot is deliberate:
// editing a plan later must not change what was billed. Due date
// defaults to DefaultDueDays after now when zero.
func NewInvoice(user model.User, rec model.MembershipRecord, plan model.MembershipPlan, paymentMode string, dueDate time.Time, now time.Time) model.Invoice {
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, DefaultDueDays)
	}
	return model.Invoice{
		UserID:             user.ID,
		MembershipRecordID: rec.ID,
		PlanID:             plan.ID,
		AmountCents:        plan.PriceCents,
		Status:             model.InvoicePending,
		PaymentMode:        paymentMode,
		DueDate:            dueDate,
	}
}
