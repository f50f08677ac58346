package attendance

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-membership-api/internal/model"
)

// fakeVisits is an in-memory Store mirroring the repository's query
// semantics.
type fakeVisits struct {
	records []model.AttendanceRecord
	nextID  uint64
}

func (f *fakeVisits) HasCheckInSince(_ context.Context, userID uint64, since time.Time) (bool, error) {
	for _, r := range f.records {
		if r.UserID == userID && !r.CheckIn.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeVisits) LatestOpen(_ context.Context, userID uint64) (model.AttendanceRecord, error) {
	var latest *model.AttendanceRecord
	for i := range f.records {
		r := &f.records[i]
		if r.UserID != userID || r.CheckOut != nil {
			continue
		}
		if latest == nil || r.CheckIn.After(latest.CheckIn) {
			latest = r
		}
	}
	if latest == nil {
		return model.AttendanceRecord{}, sql.ErrNoRows
	}
	return *latest, nil
}

func (f *fakeVisits) Insert(_ context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error) {
	f.nextID++
	rec.ID = f.nextID
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeVisits) Close(_ context.Context, id uint64, out time.Time) error {
	for i := range f.records {
		if f.records[i].ID == id && f.records[i].CheckOut == nil {
			f.records[i].CheckOut = &out
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestCheckInOpensVisit(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	now := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)

	rec, err := svc.CheckIn(context.Background(), 7, now)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.UserID)
	assert.Equal(t, now, rec.CheckIn)
	assert.Nil(t, rec.CheckOut)
}

func TestCheckInTwiceSameDayFails(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	morning := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 10, 19, 0, 0, 0, time.UTC)

	_, err := svc.CheckIn(context.Background(), 7, morning)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 7, evening)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Len(t, store.records, 1)
}

func TestCheckInGuardSurvivesCheckOut(t *testing.T) {
	// Checking out does not reset the daily guard; one visit per
	// calendar day.
	store := &fakeVisits{}
	svc := NewService(store)
	morning := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)

	_, err := svc.CheckIn(context.Background(), 7, morning)
	require.NoError(t, err)
	_, err = svc.CheckOut(context.Background(), 7, morning.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 7, morning.Add(8*time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestCheckInNextDaySucceeds(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	day1 := time.Date(2026, time.March, 10, 22, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, time.March, 11, 6, 0, 0, 0, time.UTC)

	_, err := svc.CheckIn(context.Background(), 7, day1)
	require.NoError(t, err)

	// Only eight hours later, but a new calendar day.
	_, err = svc.CheckIn(context.Background(), 7, day2)
	require.NoError(t, err)
	assert.Len(t, store.records, 2)
}

func TestCheckInIsPerUser(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	now := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)

	_, err := svc.CheckIn(context.Background(), 7, now)
	require.NoError(t, err)
	_, err = svc.CheckIn(context.Background(), 8, now)
	require.NoError(t, err)
}

func TestCheckOutClosesLatestOpenVisit(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	in := time.Date(2026, time.March, 10, 7, 30, 0, 0, time.UTC)
	out := in.Add(90 * time.Minute)

	opened, err := svc.CheckIn(context.Background(), 7, in)
	require.NoError(t, err)

	closed, err := svc.CheckOut(context.Background(), 7, out)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, closed.ID)
	require.NotNil(t, closed.CheckOut)
	assert.Equal(t, out, *closed.CheckOut)
}

func TestCheckOutWithoutOpenVisitFails(t *testing.T) {
	store := &fakeVisits{}
	svc := NewService(store)
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.CheckOut(context.Background(), 7, now)
	assert.ErrorIs(t, err, ErrNoOpenCheckIn)

	// A second check-out after a successful one fails the same way.
	_, err = svc.CheckIn(context.Background(), 7, now)
	require.NoError(t, err)
	_, err = svc.CheckOut(context.Background(), 7, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.CheckOut(context.Background(), 7, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNoOpenCheckIn)
}
