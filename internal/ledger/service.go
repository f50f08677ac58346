package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// ErrPlanNotFound is returned by Activate when the referenced plan id
// does not exist. It is a validation failure, not a system fault, and
// is never retried.
var ErrPlanNotFound = errors.New("membership plan not found")

// ErrInvalidInterval is returned when an explicit start/end override
// does not form a valid interval (end before start, or only one bound
// supplied).
var ErrInvalidInterval = errors.New("invalid membership interval")

// Store is the persistence surface the ledger needs. The production
// implementation is repository.MembershipStore; tests substitute an
// in-memory fake.
type Store interface {
	// PlanByID fetches a plan or sql.ErrNoRows when absent.
	PlanByID(ctx context.Context, id uint64) (model.MembershipPlan, error)
	// ActiveRecords returns every record for the user currently flagged
	// active.
	ActiveRecords(ctx context.Context, userID uint64) ([]model.MembershipRecord, error)
	// ReplaceActive atomically flips all of the user's active records to
	// inactive and inserts rec as the sole active record, returning the
	// stored row. Both steps happen in one transaction so readers never
	// observe zero or two active records for the user.
	ReplaceActive(ctx context.Context, rec model.MembershipRecord) (model.MembershipRecord, error)
	// DeactivateAll flips every active record for the user to inactive.
	// Flipping zero rows is not an error.
	DeactivateAll(ctx context.Context, userID uint64) error
}

// Service performs membership state transitions. All operations are
// request-scoped with no internal retries; persistence failures are
// surfaced to the caller, who may retry the whole operation.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds a Service over the given store. The clock defaults
// to time.Now and can be overridden with WithClock for deterministic
// tests.
func NewService(store Store) *Service {
	if store == nil {
		panic("nil store passed to ledger.NewService")
	}
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the service clock and returns the service.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Activate grants the user a new subscription interval for the plan.
//
// When both explicitStart and explicitEnd are supplied they are used
// verbatim (admin override). Otherwise the interval stacks: the new
// start is the maximum end date among the user's currently-active
// records, so a renewal begins exactly when the current entitlement
// would have ended rather than from today; with no active records the
// interval starts today. The end is start plus the plan's duration in
// calendar months, clamped at month end (see AddMonths).
//
// The deactivate-then-insert transition executes as one transaction
// inside Store.ReplaceActive, so after any single call exactly one
// record for the user is active.
func (s *Service) Activate(ctx context.Context, userID, planID uint64, explicitStart, explicitEnd *time.Time) (model.MembershipRecord, error) {
	plan, err := s.store.PlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MembershipRecord{}, ErrPlanNotFound
		}
		return model.MembershipRecord{}, err
	}

	var start, end time.Time
	switch {
	case explicitStart != nil && explicitEnd != nil:
		start = StartOfDay(*explicitStart)
		end = StartOfDay(*explicitEnd)
		if end.Before(start) {
			return model.MembershipRecord{}, ErrInvalidInterval
		}
	case explicitStart != nil || explicitEnd != nil:
		return model.MembershipRecord{}, ErrInvalidInterval
	default:
		active, err := s.store.ActiveRecords(ctx, userID)
		if err != nil {
			return model.MembershipRecord{}, err
		}
		// The new interval starts at the maximum end date among the
		// active records, even when that date is in the past: a lapsed
		// record stays flagged active until deactivated, and renewing
		// it continues from where it ended. Only a user with no active
		// records starts today.
		for _, r := range active {
			if d := StartOfDay(r.EndDate); d.After(start) {
				start = d
			}
		}
		if start.IsZero() {
			start = StartOfDay(s.now())
		}
		end = AddMonths(start, plan.DurationMonths)
	}

	rec := model.MembershipRecord{
		UserID:    userID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   end,
		Status:    model.MembershipActive,
	}
	return s.store.ReplaceActive(ctx, rec)
}

// Deactivate flips every active record for the user to inactive. It is
// a no-op, not an error, when the user has none.
func (s *Service) Deactivate(ctx context.Context, userID uint64) error {
	return s.store.DeactivateAll(ctx, userID)
}
