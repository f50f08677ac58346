package model

import "time"

// Stored values of membership_records.status. The derived
// entitlement (active/expired/inactive) lives in the ledger package
// and is never persisted.
const (
	MembershipActive   = "active"
	MembershipInactive = "inactive"
)

// MembershipRecord represents one purchased or assigned subscription
// interval. Multiple records may exist per user, forming the history
// of past and current subscriptions. Records are never deleted by
// normal flow; superseded records are flipped to inactive so history
// is retained for reporting.
//
// At most one record per user may be in status=active at a time.
// The ledger enforces this invariant inside a single transaction;
// the schema does not enforce it structurally.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user owning the subscription interval.
//  PlanID    – plan purchased for this interval.
//  StartDate – first day of entitlement (date precision, stored UTC).
//  EndDate   – last day of entitlement, inclusive through end of day.
//  Status    – stored lifecycle state (active or inactive).
//  CreatedAt – creation timestamp; the ledger selects the latest
//              record by this column.
type MembershipRecord struct {
	ID        uint64    // membership_records.id
	UserID    uint64    // membership_records.user_id
	PlanID    uint64    // membership_records.plan_id
	StartDate time.Time // membership_records.start_date
	EndDate   time.Time // membership_records.end_date
	Status    string    // membership_records.status
	CreatedAt time.Time // membership_records.created_at
}
