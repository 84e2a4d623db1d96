package model

import (
	"errors"
	"time"
)

// ReservationStatus is the lifecycle state of a time-boxed hold a buyer
// places on a vehicle, persisted as a string in reservations.status.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
)

// reservationTransitions enumerates the legal reservation moves.  Only
// PENDING reservations expire; a seller-confirmed hold stays until it is
// cancelled or converted into a purchase.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationExpired, ReservationCancelled, ReservationCompleted},
	ReservationConfirmed: {ReservationCancelled, ReservationCompleted},
	ReservationExpired:   {},
	ReservationCancelled: {},
	ReservationCompleted: {},
}

// CanTransition reports whether from -> to is a legal reservation move.
func (s ReservationStatus) CanTransition(to ReservationStatus) bool {
	for _, next := range reservationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether the reservation still blocks the vehicle.  At most
// one valid reservation may exist per vehicle at a time; the data layer
// enforces that with a filtered unique index.
func (s ReservationStatus) Valid() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

var ErrReservationTransition = errors.New("illegal reservation status transition")

// Reservation mirrors the `reservations` table.  Code is an opaque UUID
// handed to the buyer for support conversations; it never changes after
// creation.
type Reservation struct {
	ID           uint64            // reservations.id
	Code         string            // reservations.code (uuid)
	VehicleID    uint64            // reservations.vehicle_id
	BuyerID      uint64            // reservations.buyer_id
	Status       ReservationStatus // reservations.status
	ExpiresAt    time.Time         // reservations.expires_at
	BuyerNotes   *string           // reservations.buyer_notes (nullable)
	CancelReason *string           // reservations.cancel_reason (nullable)
	CreatedAt    time.Time         // reservations.created_at
	UpdatedAt    time.Time         // reservations.updated_at
}

// ExpiredBy reports whether the hold has lapsed at the given instant.  The
// sweep only acts on PENDING reservations for which this is true.
func (r *Reservation) ExpiredBy(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Transition applies a guarded status change on the in-memory entity.
func (r *Reservation) Transition(to ReservationStatus) error {
	if !r.Status.CanTransition(to) {
		return ErrReservationTransition
	}
	r.Status = to
	return nil
}
