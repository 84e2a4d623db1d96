package model

import (
	"errors"
	"time"
)

// Role names stored in users.role and embedded in JWT claims.
const (
	RoleCustomer = "CUSTOMER"
	RoleSeller   = "SELLER"
	RoleAdmin    = "ADMIN"
)

// User represents a row in the `users` table.  Sellers additionally own a
// SellerProfile row that tracks their approval state; customers and admins
// do not.  Blocked users keep their account but are denied all mutating
// operations until an admin unblocks them.
type User struct {
	ID            uint64     // users.id
	Email         string     // users.email
	PasswordHash  string     // users.password_hash
	DisplayName   string     // users.display_name
	Role          string     // users.role (CUSTOMER, SELLER, ADMIN)
	Blocked       bool       // users.blocked
	BlockedReason *string    // users.blocked_reason (nullable)
	BlockedAt     *time.Time // users.blocked_at (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// SellerStatus is the approval state of a seller profile, persisted as a
// string in seller_profiles.status.
type SellerStatus string

const (
	SellerPending  SellerStatus = "PENDING"
	SellerApproved SellerStatus = "APPROVED"
	SellerRejected SellerStatus = "REJECTED"
)

// sellerTransitions enumerates every legal seller approval transition.
// REJECTED -> PENDING models resubmission after fixing the profile.
var sellerTransitions = map[SellerStatus][]SellerStatus{
	SellerPending:  {SellerApproved, SellerRejected},
	SellerApproved: {},
	SellerRejected: {SellerPending},
}

// CanTransition reports whether from -> to is a legal seller approval move.
func (s SellerStatus) CanTransition(to SellerStatus) bool {
	for _, next := range sellerTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrSellerTransition is wrapped by SellerProfile methods when a caller
// requests an illegal approval transition.  Service code treats it as a
// caller bug rather than an expected runtime condition.
var ErrSellerTransition = errors.New("illegal seller status transition")

// SellerProfile mirrors the `seller_profiles` table.
type SellerProfile struct {
	UserID          uint64       // seller_profiles.user_id (PK, FK users.id)
	DealershipName  string       // seller_profiles.dealership_name
	Document        string       // seller_profiles.document
	Status          SellerStatus // seller_profiles.status
	RejectionReason *string      // seller_profiles.rejection_reason (nullable)
	CreatedAt       time.Time    // seller_profiles.created_at
	UpdatedAt       time.Time    // seller_profiles.updated_at
}

// Approve moves the profile to APPROVED and clears any prior rejection
// reason left over from an earlier rejection.
func (p *SellerProfile) Approve() error {
	if !p.Status.CanTransition(SellerApproved) {
		return ErrSellerTransition
	}
	p.Status = SellerApproved
	p.RejectionReason = nil
	return nil
}

// Reject moves the profile to REJECTED.  A reason is mandatory so the
// seller knows what to fix before resubmitting.
func (p *SellerProfile) Reject(reason string) error {
	if reason == "" {
		return errors.New("rejection reason is required")
	}
	if !p.Status.CanTransition(SellerRejected) {
		return ErrSellerTransition
	}
	p.Status = SellerRejected
	p.RejectionReason = &reason
	return nil
}

// Resubmit returns a rejected profile to PENDING for another review pass.
func (p *SellerProfile) Resubmit() error {
	if !p.Status.CanTransition(SellerPending) {
		return ErrSellerTransition
	}
	p.Status = SellerPending
	return nil
}
