package model

import (
	"errors"
	"time"
)

// VisitStatus is the lifecycle state of a scheduled viewing appointment,
// persisted as a string in visits.status.
type VisitStatus string

const (
	VisitPending     VisitStatus = "PENDING"
	VisitConfirmed   VisitStatus = "CONFIRMED"
	VisitRealized    VisitStatus = "REALIZED"
	VisitCancelled   VisitStatus = "CANCELLED"
	VisitNotRealized VisitStatus = "NOT_REALIZED"
)

// visitTransitions enumerates the legal visit moves.  A pending visit may be
// closed out directly when the seller reports attendance after the fact.
var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitPending:     {VisitConfirmed, VisitRealized, VisitNotRealized, VisitCancelled},
	VisitConfirmed:   {VisitRealized, VisitNotRealized, VisitCancelled},
	VisitRealized:    {},
	VisitCancelled:   {},
	VisitNotRealized: {},
}

// CanTransition reports whether from -> to is a legal visit move.
func (s VisitStatus) CanTransition(to VisitStatus) bool {
	for _, next := range visitTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

var ErrVisitTransition = errors.New("illegal visit status transition")

// Visit mirrors the `visits` table.  SellerID is denormalized from the
// vehicle at scheduling time so the appointment survives a later change of
// ownership of the listing.
type Visit struct {
	ID           uint64      // visits.id
	VehicleID    uint64      // visits.vehicle_id
	BuyerID      uint64      // visits.buyer_id
	SellerID     uint64      // visits.seller_id
	ScheduledAt  time.Time   // visits.scheduled_at (UTC)
	Status       VisitStatus // visits.status
	BuyerNotes   *string     // visits.buyer_notes (nullable)
	SellerNotes  *string     // visits.seller_notes (nullable)
	CancelReason *string     // visits.cancel_reason (nullable)
	CreatedAt    time.Time   // visits.created_at
	UpdatedAt    time.Time   // visits.updated_at
}

// Transition applies a guarded status change on the in-memory entity.
func (v *Visit) Transition(to VisitStatus) error {
	if !v.Status.CanTransition(to) {
		return ErrVisitTransition
	}
	v.Status = to
	return nil
}

// Visit scheduling rules.  Visits happen during showroom hours on weekdays
// and need at least one hour of lead time.
const (
	VisitMinLead   = time.Hour
	VisitOpenHour  = 9  // inclusive
	VisitCloseHour = 18 // exclusive: an 18:00 visit is rejected
)

var (
	ErrVisitTooSoon      = errors.New("visit must be scheduled at least 1 hour in advance")
	ErrVisitOutsideHours = errors.New("visit must fall between 09:00 and 18:00")
	ErrVisitOnWeekend    = errors.New("visit must fall on a weekday")
)

// ValidateVisitTime checks the scheduling rule as a pure predicate: the
// requested instant must be more than VisitMinLead after now, land on a
// Monday-Friday and start within [VisitOpenHour, VisitCloseHour).
func ValidateVisitTime(now, at time.Time) error {
	if !at.After(now.Add(VisitMinLead)) {
		return ErrVisitTooSoon
	}
	switch at.Weekday() {
	case time.Saturday, time.Sunday:
		return ErrVisitOnWeekend
	}
	if h := at.Hour(); h < VisitOpenHour || h >= VisitCloseHour {
		return ErrVisitOutsideHours
	}
	return nil
}
