// Package postgres defines the error kinds the repositories answer with.
// They are sentinels so callers can branch with errors.Is; the storage layer
// never retries a conflicting write on its own.
package postgres

import "github.com/pkg/errors"

var (
	ErrNotFound = errors.New("row not found")

	// Attendance ledger.
	ErrDuplicateCheckIn = errors.New("attendance already recorded for this day")
	ErrNoCheckInFound   = errors.New("no open check-in found for this day")
	ErrInvalidTimeOrder = errors.New("check-out time is before check-in time")

	// Leave workflow.
	ErrPastDate         = errors.New("leave day is in the past")
	ErrDuplicatePending = errors.New("a pending request already exists for this day")
	ErrNotPending       = errors.New("leave request has already been verified")
	ErrNotOwner         = errors.New("leave request belongs to another student")
	ErrUnauthorized     = errors.New("verifier is not the homeroom teacher or an admin")

	// Conflicting concurrent writes that do not map to a more specific kind.
	ErrConflict = errors.New("conflicting concurrent write")
)
