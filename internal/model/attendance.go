package model

import "time"

// AttendanceRecord captures one gym visit. A record is created on
// check-in with a null check-out; the check-out column is set exactly
// once when the member leaves. A user is "currently checked in" while
// CheckOut is nil.
//
// Fields:
//  ID       – primary key identifier.
//  UserID   – visiting member.
//  CheckIn  – visit start timestamp.
//  CheckOut – visit end timestamp (nullable; nil while still inside).
type AttendanceRecord struct {
	ID       uint64     // attendance_records.id
	UserID   uint64     // attendance_records.user_id
	CheckIn  time.Time  // attendance_records.check_in
	CheckOut *time.Time // attendance_records.check_out (nullable)
}
