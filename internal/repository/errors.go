// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as services
// and handlers to distinguish between different failure scenarios without
// inspecting driver-specific error strings at every call site.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot proceed because of
// conflicting state, such as removing a vehicle that still has a valid
// reservation. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrDuplicateReservation is returned when the filtered unique index on
// reservations rejects a second valid reservation for the same vehicle.
// This is the race guard for concurrent buyers; services translate it into
// the user-facing "already reserved" failure.
var ErrDuplicateReservation = errors.New("vehicle already has a valid reservation")

// ErrEmailExists is returned by UserRepo.Create when the email is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062). The driver does not expose a typed error for this shape of
// constraint, so the code is matched in the message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
