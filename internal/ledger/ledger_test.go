package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func plansFixture() map[uint64]model.MembershipPlan {
	return map[uint64]model.MembershipPlan{
		1: {ID: 1, Name: "Monthly", DurationMonths: 1, PriceCents: 4900},
		2: {ID: 2, Name: "Annual", DurationMonths: 12, PriceCents: 49900},
		9: {ID: 9, Name: model.NoPlanName},
	}
}

func TestDeriveStatusEmptyHistory(t *testing.T) {
	ent := DeriveStatus(nil, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusInactive, ent.Status)
	assert.Equal(t, 0, ent.RemainingDays)
	assert.Nil(t, ent.Record)
}

func TestDeriveStatusActive(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	records := []model.MembershipRecord{{
		ID: 1, UserID: 7, PlanID: 1,
		StartDate: date(2026, time.February, 15),
		EndDate:   date(2026, time.March, 15),
		Status:    model.MembershipActive,
		CreatedAt: date(2026, time.February, 15),
	}}

	ent := DeriveStatus(records, plansFixture(), now)
	assert.Equal(t, StatusActive, ent.Status)
	// March 1 noon to end of March 15: 14 whole days.
	assert.Equal(t, 14, ent.RemainingDays)
	require.NotNil(t, ent.Record)
	assert.Equal(t, uint64(1), ent.Record.ID)
}

func TestDeriveStatusEndDateInclusive(t *testing.T) {
	// The end date grants entitlement through its entire day.
	end := date(2026, time.March, 15)
	records := []model.MembershipRecord{{
		ID: 1, PlanID: 1, EndDate: end, Status: model.MembershipActive,
		CreatedAt: date(2026, time.March, 1),
	}}

	lastMoment := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	ent := DeriveStatus(records, plansFixture(), lastMoment)
	assert.Equal(t, StatusActive, ent.Status)
	assert.Equal(t, 0, ent.RemainingDays)

	nextMidnight := date(2026, time.March, 16)
	ent = DeriveStatus(records, plansFixture(), nextMidnight)
	assert.Equal(t, StatusExpired, ent.Status)
	assert.Equal(t, 0, ent.RemainingDays)
}

func TestDeriveStatusInactiveRecord(t *testing.T) {
	records := []model.MembershipRecord{{
		ID: 1, PlanID: 1,
		EndDate:   date(2099, time.January, 1),
		Status:    model.MembershipInactive,
		CreatedAt: date(2026, time.January, 1),
	}}
	ent := DeriveStatus(records, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusInactive, ent.Status)
}

func TestDeriveStatusNoPlanSentinel(t *testing.T) {
	// A record attached to the "No Plan" placeholder never grants
	// entitlement, even when flagged active with a future end date.
	records := []model.MembershipRecord{{
		ID: 1, PlanID: 9,
		EndDate:   date(2099, time.January, 1),
		Status:    model.MembershipActive,
		CreatedAt: date(2026, time.January, 1),
	}}
	ent := DeriveStatus(records, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusInactive, ent.Status)
}

func TestDeriveStatusUnknownPlan(t *testing.T) {
	records := []model.MembershipRecord{{
		ID: 1, PlanID: 42,
		EndDate:   date(2099, time.January, 1),
		Status:    model.MembershipActive,
		CreatedAt: date(2026, time.January, 1),
	}}
	ent := DeriveStatus(records, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusInactive, ent.Status)
}

func TestDeriveStatusLatestRecordWins(t *testing.T) {
	// An older active record must not mask the newer inactive one.
	records := []model.MembershipRecord{
		{
			ID: 1, PlanID: 1,
			EndDate:   date(2099, time.January, 1),
			Status:    model.MembershipActive,
			CreatedAt: date(2026, time.January, 1),
		},
		{
			ID: 2, PlanID: 1,
			EndDate:   date(2099, time.January, 1),
			Status:    model.MembershipInactive,
			CreatedAt: date(2026, time.February, 1),
		},
	}
	ent := DeriveStatus(records, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusInactive, ent.Status)
	require.NotNil(t, ent.Record)
	assert.Equal(t, uint64(2), ent.Record.ID)
}

func TestDeriveStatusCreatedAtTieBreaksOnID(t *testing.T) {
	// Records inserted within the same timestamp resolution tie-break
	// on the auto-increment id, so the newest insert still wins.
	ts := date(2026, time.February, 1)
	records := []model.MembershipRecord{
		{ID: 5, PlanID: 1, EndDate: date(2099, time.January, 1), Status: model.MembershipInactive, CreatedAt: ts},
		{ID: 6, PlanID: 1, EndDate: date(2099, time.January, 1), Status: model.MembershipActive, CreatedAt: ts},
	}
	ent := DeriveStatus(records, plansFixture(), date(2026, time.March, 1))
	assert.Equal(t, StatusActive, ent.Status)
	require.NotNil(t, ent.Record)
	assert.Equal(t, uint64(6), ent.Record.ID)
}

func TestDeriveStatusOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		records := make([]model.MembershipRecord, n)
		for i := range records {
			records[i] = model.MembershipRecord{
				ID:        uint64(i + 1),
				PlanID:    rapid.SampledFrom([]uint64{1, 2, 9, 42}).Draw(t, "plan"),
				EndDate:   date(2026, time.Month(rapid.IntRange(1, 12).Draw(t, "m")), rapid.IntRange(1, 28).Draw(t, "d")),
				Status:    rapid.SampledFrom([]string{model.MembershipActive, model.MembershipInactive}).Draw(t, "status"),
				CreatedAt: date(2026, time.January, rapid.IntRange(1, 28).Draw(t, "created")),
			}
		}
		now := date(2026, time.June, 15)
		want := DeriveStatus(records, plansFixture(), now)

		// Reverse the slice; derivation must not depend on order.
		reversed := make([]model.MembershipRecord, n)
		for i := range records {
			reversed[n-1-i] = records[i]
		}
		got := DeriveStatus(reversed, plansFixture(), now)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.RemainingDays, got.RemainingDays)
	})
}

func TestDeriveStatusRemainingDaysNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := []model.MembershipRecord{{
			ID: 1, PlanID: 1,
			EndDate:   date(2026, time.Month(rapid.IntRange(1, 12).Draw(t, "em")), rapid.IntRange(1, 28).Draw(t, "ed")),
			Status:    model.MembershipActive,
			CreatedAt: date(2026, time.January, 1),
		}}
		now := date(2026, time.Month(rapid.IntRange(1, 12).Draw(t, "nm")), rapid.IntRange(1, 28).Draw(t, "nd"))
		ent := DeriveStatus(records, plansFixture(), now)
		assert.GreaterOrEqual(t, ent.RemainingDays, 0)
		if ent.Status != StatusActive {
			assert.Equal(t, 0, ent.RemainingDays)
		}
	})
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{"jan 31 plus one", date(2026, time.January, 31), 1, date(2026, time.February, 28)},
		{"jan 31 plus one leap", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jun 30 plus one", date(2024, time.June, 30), 1, date(2024, time.July, 30)},
		{"mid month", date(2026, time.March, 15), 1, date(2026, time.April, 15)},
		{"year rollover", date(2026, time.November, 30), 3, date(2027, time.February, 28)},
		{"twelve months", date(2026, time.February, 28), 12, date(2027, time.February, 28)},
		{"zero", date(2026, time.May, 10), 0, date(2026, time.May, 10)},
		{"back one from mar 31", date(2026, time.March, 31), -1, date(2026, time.February, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMonths(tc.in, tc.n))
		})
	}
}

func TestAddMonthsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := date(
			rapid.IntRange(2000, 2100).Draw(t, "y"),
			time.Month(rapid.IntRange(1, 12).Draw(t, "m")),
			rapid.IntRange(1, 31).Draw(t, "d"),
		)
		n := rapid.IntRange(0, 36).Draw(t, "n")
		out := AddMonths(in, n)

		// The month advances by exactly n calendar months and the day
		// never exceeds the original day of month.
		assert.LessOrEqual(t, out.Day(), in.Day())
		assert.LessOrEqual(t, out.Day(), daysInMonth(out.Year(), out.Month()))
		wantMonths := (in.Year()*12 + int(in.Month()) - 1 + n)
		gotMonths := out.Year()*12 + int(out.Month()) - 1
		assert.Equal(t, wantMonths, gotMonths)
		assert.False(t, out.Before(in))
	})
}

func TestEndOfDayAndStartOfDay(t *testing.T) {
	ts := time.Date(2026, time.March, 15, 13, 45, 12, 999, time.UTC)
	assert.Equal(t, date(2026, time.March, 15), StartOfDay(ts))

	eod := EndOfDay(ts)
	assert.Equal(t, 23, eod.Hour())
	assert.True(t, eod.Before(date(2026, time.March, 16)))
	assert.True(t, eod.After(ts))
}

func TestWholeDays(t *testing.T) {
	from := date(2026, time.March, 1)
	assert.Equal(t, 14, wholeDays(from, date(2026, time.March, 15)))
	assert.Equal(t, 0, wholeDays(from, from))
	// Clamped when the range is inverted.
	assert.Equal(t, 0, wholeDays(from, date(2026, time.February, 1)))
}
