package model

import "time"

// NoPlanName is the sentinel plan assigned to members who have no
// paid subscription. A membership record pointing at this plan never
// grants entitlement, regardless of its stored status or dates.
const NoPlanName = "No Plan"

// MembershipPlan is immutable reference data describing a purchasable
// subscription tier. Plans are created and edited by administrators
// and read by the ledger to compute renewal end dates.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – unique display name (e.g. "Gold", "No Plan").
//  PriceCents     – price in cents; invoices snapshot this at generation time.
//  DurationMonths – whole months of entitlement granted per activation.
//  Features       – ordered feature list, stored as a JSON array string.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type MembershipPlan struct {
	ID             uint64    // membership_plans.id
	Name           string    // membership_plans.name
	PriceCents     int64     // membership_plans.price_cents
	DurationMonths int       // membership_plans.duration_months
	Features       string    // membership_plans.features (JSON array)
	CreatedAt      time.Time // membership_plans.created_at
	UpdatedAt      time.Time // membership_plans.updated_at
}
