package model

import "time"

// PurchaseStatus is the settlement state of a purchase transaction.
// Payment processing is handled by an external collaborator; this service
// only creates the pending record when a reservation converts.
type PurchaseStatus string

const (
	PurchasePendingPayment PurchaseStatus = "PENDING_PAYMENT"
	PurchasePaid           PurchaseStatus = "PAID"
)

// Purchase mirrors the `purchases` table.  PriceCents snapshots the
// vehicle's price at the moment the reservation converted, so later edits
// to the listing cannot change what the buyer owes.
type Purchase struct {
	ID            uint64         // purchases.id
	ReservationID uint64         // purchases.reservation_id
	VehicleID     uint64         // purchases.vehicle_id
	BuyerID       uint64         // purchases.buyer_id
	PriceCents    uint64         // purchases.price_cents
	Status        PurchaseStatus // purchases.status
	CreatedAt     time.Time      // purchases.created_at
}
