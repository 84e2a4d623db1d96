package model

import (
	"errors"
	"time"
)

// VehicleStatus is the lifecycle state of a listing, persisted as a string
// in vehicles.status.
type VehicleStatus string

const (
	VehicleActive   VehicleStatus = "ACTIVE"   // listed and open to reservations
	VehicleReserved VehicleStatus = "RESERVED" // held by a valid reservation
	VehicleSold     VehicleStatus = "SOLD"     // purchase confirmed, terminal
	VehiclePaused   VehicleStatus = "PAUSED"   // hidden by the seller, re-listable
	VehicleRemoved  VehicleStatus = "REMOVED"  // soft-deleted, terminal
)

// vehicleTransitions is the allowed transition table for listings.  SOLD is
// only reachable from RESERVED because a purchase always converts an
// existing reservation.  SOLD and REMOVED are terminal.
var vehicleTransitions = map[VehicleStatus][]VehicleStatus{
	VehicleActive:   {VehicleReserved, VehiclePaused, VehicleRemoved},
	VehicleReserved: {VehicleActive, VehicleSold},
	VehiclePaused:   {VehicleActive, VehicleRemoved},
	VehicleSold:     {},
	VehicleRemoved:  {},
}

// CanTransition reports whether from -> to is a legal listing move.
func (s VehicleStatus) CanTransition(to VehicleStatus) bool {
	for _, next := range vehicleTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Available reports whether the vehicle has not definitively left the
// marketplace.  RESERVED counts as available: the hold may still expire or
// be cancelled.
func (s VehicleStatus) Available() bool {
	return s == VehicleActive || s == VehicleReserved
}

var ErrVehicleTransition = errors.New("illegal vehicle status transition")

// Vehicle mirrors the `vehicles` table.  ImageKeys holds the ordered object
// storage keys of the listing photos; the upload pipeline itself lives
// outside this service.
type Vehicle struct {
	ID          uint64        // vehicles.id
	SellerID    uint64        // vehicles.seller_id (FK users.id)
	Make        string        // vehicles.make
	Model       string        // vehicles.model
	Year        uint16        // vehicles.year
	PriceCents  uint64        // vehicles.price_cents
	MileageKM   uint32        // vehicles.mileage_km
	Condition   string        // vehicles.condition (e.g. NEW, USED)
	Description string        // vehicles.description
	Status      VehicleStatus // vehicles.status
	ImageKeys   []string      // vehicle_images.object_key, ordered by position
	CreatedAt   time.Time     // vehicles.created_at
	UpdatedAt   time.Time     // vehicles.updated_at
}

// Transition applies a guarded status change on the in-memory entity.
// Persistence is the caller's responsibility.
func (v *Vehicle) Transition(to VehicleStatus) error {
	if !v.Status.CanTransition(to) {
		return ErrVehicleTransition
	}
	v.Status = to
	return nil
}
