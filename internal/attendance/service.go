// Package attendance records gym check-in and check-out events with a
// same-day double-check-in guard. Precondition violations here are
// expected member-facing outcomes, not faults: handlers translate them
// into 4xx responses and must not log them as errors.
package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/gym-membership-api/internal/ledger"
	"github.com/iliyamo/gym-membership-api/internal/model"
)

// ErrAlreadyCheckedIn is returned when the user already has a check-in
// on the same calendar day, whether or not it has been closed.
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// ErrNoOpenCheckIn is returned by CheckOut when the user has no record
// with a null check-out.
var ErrNoOpenCheckIn = errors.New("no open check-in")

// Store is the persistence surface the tracker needs. The production
// implementation is repository.AttendanceRepo.
type Store interface {
	// HasCheckInSince reports whether the user has any record with a
	// check-in timestamp at or after the given instant.
	HasCheckInSince(ctx context.Context, userID uint64, since time.Time) (bool, error)
	// LatestOpen returns the most recent record with a null check-out,
	// or sql.ErrNoRows when none exists.
	LatestOpen(ctx context.Context, userID uint64) (model.AttendanceRecord, error)
	// Insert stores a new record and returns it with its id populated.
	Insert(ctx context.Context, rec model.AttendanceRecord) (model.AttendanceRecord, error)
	// Close sets the check-out timestamp on the record once.
	Close(ctx context.Context, id uint64, out time.Time) error
}

// Service implements check-in/check-out. Both operations are
// read-then-write against the store with no locking; two racing
// check-ins for the same user can at worst create one duplicate row,
// which the same-day guard prevents on every non-concurrent path.
type Service struct {
	store Store
}

// NewService builds a Service over the given store.
func NewService(store Store) *Service {
	if store == nil {
		panic("nil store passed to attendance.NewService")
	}
	return &Service{store: store}
}

// CheckIn opens a visit for the user at now. It fails with
// ErrAlreadyCheckedIn, creating nothing, when a record with a check-in
// on the same calendar day already exists.
func (s *Service) CheckIn(ctx context.Context, userID uint64, now time.Time) (model.AttendanceRecord, error) {
	exists, err := s.store.HasCheckInSince(ctx, userID, ledger.StartOfDay(now))
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	if exists {
		return model.AttendanceRecord{}, ErrAlreadyCheckedIn
	}
	return s.store.Insert(ctx, model.AttendanceRecord{UserID: userID, CheckIn: now})
}

// CheckOut closes the user's most recent open visit at now. It fails
// with ErrNoOpenCheckIn when no open record exists.
func (s *Service) CheckOut(ctx context.Context, userID uint64, now time.Time) (model.AttendanceRecord, error) {
	rec, err := s.store.LatestOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AttendanceRecord{}, ErrNoOpenCheckIn
		}
		return model.AttendanceRecord{}, err
	}
	if err := s.store.Close(ctx, rec.ID, now); err != nil {
		return model.AttendanceRecord{}, err
	}
	rec.CheckOut = &now
	return rec, nil
}
