// Package service implements the marketplace workflows on top of the
// repository layer: the reservation manager, the visit scheduler, the
// moderation subsystem and notification fan-out. Expected business
// failures are sentinel errors so handlers can translate them into
// user-facing messages with errors.Is; anything else bubbles up as an
// internal error.
package service

import "errors"

var (
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrVehicleUnavailable  = errors.New("vehicle is not available")
	ErrBuyerNotFound       = errors.New("buyer profile not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserBlocked         = errors.New("user is blocked")
	ErrAlreadyReserved     = errors.New("vehicle is already reserved")
	ErrInvalidValidity     = errors.New("reservation validity must be between 1 and 30 days")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationFinished = errors.New("reservation is already finished")
	ErrReservationExpired  = errors.New("reservation has expired")
	ErrForbidden           = errors.New("operation not allowed for this user")
	ErrVisitNotFound       = errors.New("visit not found")
	ErrVisitFinished       = errors.New("visit is already finished")
	ErrVisitQuota          = errors.New("daily visit limit reached for this vehicle")
	ErrVisitNotDue         = errors.New("visit has not taken place yet")
	ErrSellerNotFound      = errors.New("seller profile not found")
	ErrReportNotFound      = errors.New("report not found")
	ErrInvalidTransition   = errors.New("state transition not allowed")
)
