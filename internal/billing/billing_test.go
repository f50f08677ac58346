package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

func TestFormatReference(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", FormatReference(2026, 1))
	assert.Equal(t, "INV-2026-0042", FormatReference(2026, 42))
	// The pad widens past four digits instead of truncating.
	assert.Equal(t, "INV-2026-12345", FormatReference(2026, 12345))
	assert.Equal(t, "INV-2027-", ReferencePrefix(2027))
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		name     string
		current  int64
		previous int64
		want     float64
	}{
		{"growth", 150, 100, 50},
		{"decline", 50, 100, -50},
		{"flat", 100, 100, 0},
		{"from zero", 7, 0, 100},
		{"both zero", 0, 0, 0},
		{"to zero", 0, 100, -100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, PercentChange(tc.current, tc.previous), 1e-9)
		})
	}
}

func TestPercentChangeNeverNaN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cur := rapid.Int64Range(0, 1_000_000).Draw(t, "cur")
		prev := rapid.Int64Range(0, 1_000_000).Draw(t, "prev")
		got := PercentChange(cur, prev)
		assert.False(t, got != got, "NaN for cur=%d prev=%d", cur, prev)
	})
}

func TestMonthWindows(t *testing.T) {
	now := time.Date(2026, time.March, 14, 16, 20, 0, 0, time.UTC)
	curFrom, curTo, prevFrom, prevTo := MonthWindows(now)

	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), curFrom)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), curTo)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), prevFrom)
	assert.Equal(t, curFrom, prevTo)
}

func TestMonthWindowsYearBoundary(t *testing.T) {
	now := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	curFrom, _, prevFrom, prevTo := MonthWindows(now)

	assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), curFrom)
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), prevFrom)
	assert.Equal(t, curFrom, prevTo)
}

func TestNewInvoiceSnapshotsPrice(t *testing.T) {
	user := model.User{ID: 7}
	rec := model.MembershipRecord{ID: 31, UserID: 7, PlanID: 2}
	plan := model.MembershipPlan{ID: 2, Name: "Annual", PriceCents: 49900}
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	inv := NewInvoice(user, rec, plan, "card", time.Time{}, now)
	assert.Equal(t, int64(49900), inv.AmountCents)
	assert.Equal(t, uint64(31), inv.MembershipRecordID)
	assert.Equal(t, model.InvoicePending, inv.Status)
	// Zero due date defaults to DefaultDueDays out.
	assert.Equal(t, now.AddDate(0, 0, DefaultDueDays), inv.DueDate)

	// Mutating the plan after the fact must not change the snapshot.
	plan.PriceCents = 1
	assert.Equal(t, int64(49900), inv.AmountCents)
}

func TestNewInvoiceExplicitDueDate(t *testing.T) {
	due := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	inv := NewInvoice(model.User{ID: 7}, model.MembershipRecord{ID: 1}, model.MembershipPlan{ID: 1, PriceCents: 4900}, "", due, now)
	assert.Equal(t, due, inv.DueDate)
	assert.Empty(t, inv.Reference, "reference is assigned at persist time")
}
