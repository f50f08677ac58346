// Package ledger computes membership entitlement from a user's record
// history and performs the activate/deactivate transitions that mutate
// that history. Derivation is pure; all I/O goes through the Store
// interface consumed by Service.
package ledger

import (
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// Status is the derived entitlement of a user. It is computed on read
// and never persisted; membership_records.status only stores the
// active/inactive lifecycle flag.
type Status string

const (
	// StatusActive means the latest record is active, points at a real
	// paid plan and its end date has not yet passed (end of day
	// inclusive).
	StatusActive Status = "active"
	// StatusExpired means the latest record is still flagged active but
	// its end date is in the past.
	StatusExpired Status = "expired"
	// StatusInactive means there is no record, the latest record is
	// flagged inactive, or it points at the "No Plan" sentinel.
	StatusInactive Status = "inactive"
)

// Entitlement is the result of deriving a user's membership status.
//
// RemainingDays counts whole days from now until the end of the last
// entitled day. It is 0 for any non-active status and never negative.
type Entitlement struct {
	Status        Status                  `json:"status"`
	RemainingDays int                     `json:"remaining_days"`
	Record        *model.MembershipRecord `json:"-"`
}

// DeriveStatus computes the entitlement of a user from their full
// record history. Records arrive in no particular order; the latest
// record wins, selected by creation timestamp descending with id
// descending as the tie-break (ids are monotonic auto-increments, so
// the tie-break is deterministic and favors the newest insert).
//
// plans maps plan id to plan; a record whose plan is missing from the
// map or named "No Plan" never grants entitlement.
func DeriveStatus(records []model.MembershipRecord, plans map[uint64]model.MembershipPlan, now time.Time) Entitlement {
	latest := latestRecord(records)
	if latest == nil {
		return Entitlement{Status: StatusInactive}
	}
	ent := Entitlement{Status: StatusInactive, Record: latest}

	plan, ok := plans[latest.PlanID]
	if !ok || plan.Name == model.NoPlanName {
		return ent
	}
	if latest.Status != model.MembershipActive {
		return ent
	}
	expiry := EndOfDay(latest.EndDate)
	if expiry.Before(now) {
		ent.Status = StatusExpired
		return ent
	}
	ent.Status = StatusActive
	ent.RemainingDays = wholeDays(now, expiry)
	return ent
}

// latestRecord returns a pointer to the record with the greatest
// creation timestamp, or nil for an empty history.
func latestRecord(records []model.MembershipRecord) *model.MembershipRecord {
	var latest *model.MembershipRecord
	for i := range records {
		r := &records[i]
		if latest == nil {
			latest = r
			continue
		}
		if r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	return latest
}

// EndOfDay returns the last representable instant of t's calendar day
// in t's location. Membership end dates are inclusive through this
// instant.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// wholeDays returns the number of whole 24h periods between from and
// to, clamped to zero.
func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}

// AddMonths adds n calendar months to t, clamping the day to the last
// day of the target month. Jan 31 + 1 month yields Feb 28 (29 in leap
// years), never Mar 2/3 as time.AddDate would produce. Time of day and
// location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	months := y*12 + int(m) - 1 + n
	ny, nm := months/12, time.Month(months%12+1)
	if months < 0 {
		// floor division for dates before year zero; not expected in
		// practice but keeps the function total
		ny = (months - 11) / 12
		nm = time.Month(months - ny*12 + 1)
	}
	if last := daysInMonth(ny, nm); d > last {
		d = last
	}
	h, min, sec := t.Clock()
	return time.Date(ny, nm, d, h, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month; day 0 of
// the following month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
