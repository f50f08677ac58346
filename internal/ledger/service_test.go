package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// fakeStore is an in-memory Store that mirrors the transactional
// behavior of the real repository: ReplaceActive flips and inserts in
// one step.
type fakeStore struct {
	plans   map[uint64]model.MembershipPlan
	records []model.MembershipRecord
	nextID  uint64
	now     time.Time
}

func newFakeStore(now time.Time) *fakeStore {
	return &fakeStore{
		plans: map[uint64]model.MembershipPlan{
			1: {ID: 1, Name: "Monthly", DurationMonths: 1, PriceCents: 4900},
			2: {ID: 2, Name: "Quarterly", DurationMonths: 3, PriceCents: 12900},
		},
		nextID: 1,
		now:    now,
	}
}

func (f *fakeStore) PlanByID(_ context.Context, id uint64) (model.MembershipPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return model.MembershipPlan{}, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) ActiveRecords(_ context.Context, userID uint64) ([]model.MembershipRecord, error) {
	var out []model.MembershipRecord
	for _, r := range f.records {
		if r.UserID == userID && r.Status == model.MembershipActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceActive(_ context.Context, rec model.MembershipRecord) (model.MembershipRecord, error) {
	for i := range f.records {
		if f.records[i].UserID == rec.UserID && f.records[i].Status == model.MembershipActive {
			f.records[i].Status = model.MembershipInactive
		}
	}
	rec.ID = f.nextID
	f.nextID++
	rec.CreatedAt = f.now
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) DeactivateAll(_ context.Context, userID uint64) error {
	for i := range f.records {
		if f.records[i].UserID == userID && f.records[i].Status == model.MembershipActive {
			f.records[i].Status = model.MembershipInactive
		}
	}
	return nil
}

func (f *fakeStore) activeCount(userID uint64) int {
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && r.Status == model.MembershipActive {
			n++
		}
	}
	return n
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestActivateFreshUserStartsToday(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	rec, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.March, 10), rec.StartDate)
	assert.Equal(t, date(2026, time.April, 10), rec.EndDate)
	assert.Equal(t, model.MembershipActive, rec.Status)
	assert.Equal(t, 1, store.activeCount(7))
}

func TestActivateStacksOnActiveRecord(t *testing.T) {
	// A renewal starts when the current entitlement ends, so the
	// member loses nothing by renewing early.
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	first, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 1), first.EndDate)

	second, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.July, 1), second.StartDate)
	assert.Equal(t, date(2024, time.August, 1), second.EndDate)
	assert.Equal(t, 1, store.activeCount(7))
}

func TestActivateStacksFromLapsedActiveRecord(t *testing.T) {
	// A lapsed record stays flagged active until deactivated, and a
	// renewal continues from its end date even when that date is in
	// the past. Today is only used for users with no active records.
	now := time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	store.records = append(store.records, model.MembershipRecord{
		ID: 1, UserID: 7, PlanID: 1,
		StartDate: date(2024, time.May, 30),
		EndDate:   date(2024, time.June, 30),
		Status:    model.MembershipActive,
		CreatedAt: date(2024, time.May, 30),
	})
	store.nextID = 2
	svc := NewService(store).WithClock(fixedClock(now))

	rec, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 30), rec.StartDate)
	assert.Equal(t, date(2024, time.July, 30), rec.EndDate)
	assert.Equal(t, 1, store.activeCount(7))
}

func TestActivateStackingClampsMonthEnd(t *testing.T) {
	// Stacking from Jun 30 lands on Jul 30, not Jul 31: month
	// arithmetic clamps rather than overflowing.
	now := time.Date(2024, time.June, 30, 8, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	rec, err := svc.Activate(context.Background(), 3, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.June, 30), rec.StartDate)
	assert.Equal(t, date(2024, time.July, 30), rec.EndDate)
}

func TestActivateExplicitInterval(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	start := time.Date(2026, time.January, 5, 17, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 5, 3, 0, 0, 0, time.UTC)
	rec, err := svc.Activate(context.Background(), 7, 2, &start, &end)
	require.NoError(t, err)
	// Explicit bounds are normalized to day precision and used
	// verbatim; the plan duration is ignored.
	assert.Equal(t, date(2026, time.January, 5), rec.StartDate)
	assert.Equal(t, date(2026, time.February, 5), rec.EndDate)
}

func TestActivateExplicitIntervalValidation(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	svc := NewService(newFakeStore(now)).WithClock(fixedClock(now))

	start := date(2026, time.February, 5)
	end := date(2026, time.January, 5)

	_, err := svc.Activate(context.Background(), 7, 1, &start, &end)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// One bound without the other is rejected too.
	_, err = svc.Activate(context.Background(), 7, 1, &start, nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = svc.Activate(context.Background(), 7, 1, nil, &end)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestActivateUnknownPlan(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	_, err := svc.Activate(context.Background(), 7, 99, nil, nil)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Empty(t, store.records)
}

func TestDeactivateIsIdempotent(t *testing.T) {
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	store := newFakeStore(now)
	svc := NewService(store).WithClock(fixedClock(now))

	// Deactivating a user with no records succeeds silently.
	require.NoError(t, svc.Deactivate(context.Background(), 7))

	_, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), 7))
	assert.Equal(t, 0, store.activeCount(7))
	require.NoError(t, svc.Deactivate(context.Background(), 7))
	assert.Equal(t, 0, store.activeCount(7))
}

func TestLifecycleScenario(t *testing.T) {
	// activate, let it run out, derive expired, deactivate, derive
	// inactive, re-activate: each step sees the expected status.
	start := time.Date(2026, time.January, 10, 10, 0, 0, 0, time.UTC)
	store := newFakeStore(start)
	svc := NewService(store).WithClock(fixedClock(start))

	_, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)

	during := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
	ent := DeriveStatus(store.records, store.plans, during)
	assert.Equal(t, StatusActive, ent.Status)

	after := time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC)
	ent = DeriveStatus(store.records, store.plans, after)
	assert.Equal(t, StatusExpired, ent.Status)

	require.NoError(t, svc.Deactivate(context.Background(), 7))
	ent = DeriveStatus(store.records, store.plans, after)
	assert.Equal(t, StatusInactive, ent.Status)

	// With every record deactivated there is nothing to stack on, so
	// re-activation starts fresh from today.
	store.now = after
	svc = NewService(store).WithClock(fixedClock(after))
	rec, err := svc.Activate(context.Background(), 7, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2026, time.February, 11), rec.StartDate)

	ent = DeriveStatus(store.records, store.plans, after)
	assert.Equal(t, StatusActive, ent.Status)
	assert.Equal(t, 1, store.activeCount(7))
}
