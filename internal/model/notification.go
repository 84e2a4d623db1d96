package model

import "time"

// Notification kinds.
const (
	NotifyReservationCreated   = "RESERVATION_CREATED"
	NotifyReservationCancelled = "RESERVATION_CANCELLED"
	NotifyReservationExpired   = "RESERVATION_EXPIRED"
	NotifyPurchaseConfirmed    = "PURCHASE_CONFIRMED"
	NotifyVisitScheduled       = "VISIT_SCHEDULED"
	NotifyVisitConfirmed       = "VISIT_CONFIRMED"
	NotifyVisitCancelled       = "VISIT_CANCELLED"
	NotifySellerApproved       = "SELLER_APPROVED"
	NotifySellerRejected       = "SELLER_REJECTED"
	NotifyAccountBlocked       = "ACCOUNT_BLOCKED"
	NotifyAccountUnblocked     = "ACCOUNT_UNBLOCKED"
	NotifyReportClosed         = "REPORT_CLOSED"
)

// Notification mirrors the `notifications` table.  Rows are created by any
// workflow step that needs to inform a user and mutated only to flip the
// read flag.
type Notification struct {
	ID         uint64    // notifications.id
	UserID     uint64    // notifications.user_id
	Kind       string    // notifications.kind (one of the Notify* tags)
	Subject    string    // notifications.subject
	Body       string    // notifications.body
	Link       *string   // notifications.link (nullable deep link)
	EntityType *string   // notifications.entity_type (nullable)
	EntityID   *uint64   // notifications.entity_id (nullable)
	Read       bool      // notifications.read
	CreatedAt  time.Time // notifications.created_at
}
