package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

// CascadeCancelReason is recorded on visits cancelled by the sweep when
// their owning reservation expires.
const CascadeCancelReason = "reservation expired automatically"

// Reservation validity bounds in days.
const (
	DefaultValidityDays = 7
	MaxValidityDays     = 30
)

// TxRunner runs a unit of work inside one database transaction.
// repository.TxRunner is the production implementation.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Store interfaces are satisfied by the concrete repositories; they exist
// so the workflows can be exercised against in-memory fakes in tests.
type reservationVehicleStore interface {
	GetByID(ctx context.Context, id uint64) (model.Vehicle, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.VehicleStatus) error
}

type reservationStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus, cancelReason *string) error
	ExistsValidForBuyerTx(ctx context.Context, tx *sql.Tx, vehicleID, buyerID uint64) (bool, error)
	CountOtherValidTx(ctx context.Context, tx *sql.Tx, vehicleID, excludeID uint64) (int, error)
	ListExpiredPendingTx(ctx context.Context, tx *sql.Tx, now time.Time) ([]model.Reservation, error)
}

type reservationUserStore interface {
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error)
}

type visitCascadeStore interface {
	CancelPendingTx(ctx context.Context, tx *sql.Tx, vehicleID, buyerID uint64, reason string) (int64, error)
}

type purchaseStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error
}

// Notifier delivers a notification best-effort. Implementations must never
// fail the calling workflow; see NotificationService.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// ReservationService is the sole writer of the ACTIVE<->RESERVED vehicle
// transitions caused by reservation events. Every mutating operation wraps
// its read-validate-write sequence in a single transaction.
type ReservationService struct {
	Tx           TxRunner
	Vehicles     reservationVehicleStore
	Reservations reservationStore
	Users        reservationUserStore
	Visits       visitCascadeStore
	Purchases    purchaseStore
	Notifier     Notifier
	Now          func() time.Time
}

func NewReservationService(tx TxRunner, vehicles *repository.VehicleRepo, reservations *repository.ReservationRepo,
	users *repository.UserRepo, visits *repository.VisitRepo, purchases *repository.PurchaseRepo, notifier Notifier) *ReservationService {
	return &ReservationService{
		Tx:           tx,
		Vehicles:     vehicles,
		Reservations: reservations,
		Users:        users,
		Visits:       visits,
		Purchases:    purchases,
		Notifier:     notifier,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// Create places a hold on an ACTIVE vehicle for the buyer. The reservation
// insert and the vehicle status flip commit together. A second valid
// reservation on the same vehicle is rejected either by the upfront status
// check or, under a concurrent race, by the filtered unique index.
func (s *ReservationService) Create(ctx context.Context, vehicleID, buyerID uint64, validityDays int, notes *string) (*model.Reservation, error) {
	if validityDays == 0 {
		validityDays = DefaultValidityDays
	}
	if validityDays < 1 || validityDays > MaxValidityDays {
		return nil, ErrInvalidValidity
	}

	var (
		res     model.Reservation
		vehicle model.Vehicle
	)
	err := s.Tx.InTx(ctx, func(tx *sql.Tx) error {
		v, err := s.Vehicles.GetTx(ctx, tx, vehicleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("load vehicle: %w", err)
		}
		if v.Status != model.VehicleActive {
			if v.Status == model.VehicleReserved {
				return ErrAlreadyReserved
			}
			return ErrVehicleUnavailable
		}
		buyer, err := s.Users.GetTx(ctx, tx, buyerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBuyerNotFound
			}
			return fmt.Errorf("load buyer: %w", err)
		}
		if buyer.Blocked {
			return ErrUserBlocked
		}
		exists, err := s.Reservations.ExistsValidForBuyerTx(ctx, tx, vehicleID, buyerID)
		if err != nil {
			return fmt.Errorf("check existing reservation: %w", err)
		}
		if exists {
			return ErrAlreadyReserved
		}

		res = model.Reservation{
			Code:       uuid.NewString(),
			VehicleID:  vehicleID,
			BuyerID:    buyerID,
			ExpiresAt:  s.Now().Add(time.Duration(validityDays) * 24 * time.Hour),
			BuyerNotes: notes,
		}
		if err := s.Reservations.CreateTx(ctx, tx, &res); err != nil {
			if errors.Is(err, repository.ErrDuplicateReservation) {
				return ErrAlreadyReserved
			}
			return fmt.Errorf("create reservation: %w", err)
		}
		if err := v.Transition(model.VehicleReserved); err != nil {
			return ErrVehicleUnavailable
		}
		if err := s.Vehicles.SetStatusTx(ctx, tx, v.ID, v.Status); err != nil {
			return fmt.Errorf("reserve vehicle: %w", err)
		}
		vehicle = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, buyerID, model.NotifyReservationCreated,
		"Reservation confirmed",
		fmt.Sprintf("You reserved %s %s until %s.", vehicle.Make, vehicle.Model, res.ExpiresAt.Format(time.RFC3339)),
		res.ID)
	s.notify(ctx, vehicle.SellerID, model.NotifyReservationCreated,
		"Your vehicle was reserved",
		fmt.Sprintf("A buyer reserved your %s %s.", vehicle.Make, vehicle.Model),
		res.ID)
	return &res, nil
}

// Confirm lets the seller acknowledge a pending hold, moving it to
// CONFIRMED so it no longer expires automatically.
func (s *ReservationService) Confirm(ctx context.Context, reservationID, sellerID uint64) (*model.Reservation, error) {
	var res model.Reservation
	err := s.Tx.InTx(ctx, func(tx *sql.Tx) error {
		r, err := s.Reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("load reservation: %w", err)
		}
		v, err := s.Vehicles.GetTx(ctx, tx, r.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		if v.SellerID != sellerID {
			return ErrForbidden
		}
		if r.Status != model.ReservationPending {
			return ErrInvalidTransition
		}
		if r.ExpiredBy(s.Now()) {
			return ErrReservationExpired
		}
		if err := r.Transition(model.ReservationConfirmed); err != nil {
			return ErrInvalidTransition
		}
		if err := s.Reservations.SetStatusTx(ctx, tx, r.ID, r.Status, nil); err != nil {
			return fmt.Errorf("confirm reservation: %w", err)
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, res.BuyerID, model.NotifyReservationCreated,
		"Reservation acknowledged", "The seller confirmed your reservation.", res.ID)
	return &res, nil
}

// Cancel ends a valid reservation on behalf of the buyer or the seller.
// The vehicle reverts to ACTIVE only when no other valid reservation
// remains for it. The existence check and the revert are two statements in
// the same transaction, not a single conditional update; see DESIGN.md for
// the accepted race window.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID uint64, reason string) error {
	var (
		res     model.Reservation
		vehicle model.Vehicle
	)
	err := s.Tx.InTx(ctx, func(tx *sql.Tx) error {
		r, err := s.Reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("load reservation: %w", err)
		}
		v, err := s.Vehicles.GetTx(ctx, tx, r.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}
		if actorID != r.BuyerID && actorID != v.SellerID {
			return ErrForbidden
		}
		if err := r.Transition(model.ReservationCancelled); err != nil {
			return ErrReservationFinished
		}
		if err := s.Reservations.SetStatusTx(ctx, tx, r.ID, r.Status, &reason); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		others, err := s.Reservations.CountOtherValidTx(ctx, tx, r.VehicleID, r.ID)
		if err != nil {
			return fmt.Errorf("count valid reservations: %w", err)
		}
		if others == 0 && v.Status == model.VehicleReserved {
			if err := s.Vehicles.SetStatusTx(ctx, tx, v.ID, model.VehicleActive); err != nil {
				return fmt.Errorf("release vehicle: %w", err)
			}
		}
		res = r
		vehicle = v
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, res.BuyerID, model.NotifyReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("Reservation for %s %s was cancelled: %s", vehicle.Make, vehicle.Model, reason),
		res.ID)
	s.notify(ctx, vehicle.SellerID, model.NotifyReservationCancelled,
		"Reservation cancelled",
		fmt.Sprintf("The reservation on your %s %s was cancelled.", vehicle.Make, vehicle.Model),
		res.ID)
	return nil
}

// ConfirmPurchase converts a valid reservation into a pending purchase at
// the vehicle's current price. Reservation, purchase and vehicle rows
// change together in one transaction.
func (s *ReservationService) ConfirmPurchase(ctx context.Context, reservationID, buyerID uint64) (*model.Purchase, error) {
	var (
		purchase model.Purchase
		vehicle  model.Vehicle
	)
	err := s.Tx.InTx(ctx, func(tx *sql.Tx) error {
		r, err := s.Reservations.GetTx(ctx, tx, reservationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReservationNotFound
			}
			return fmt.Errorf("load reservation: %w", err)
		}
		if r.BuyerID != buyerID {
			return ErrForbidden
		}
		if !r.Status.Valid() {
			return ErrReservationFinished
		}
		if r.ExpiredBy(s.Now()) {
			return ErrReservationExpired
		}
		buyer, err := s.Users.GetTx(ctx, tx, buyerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBuyerNotFound
			}
			return fmt.Errorf("load buyer: %w", err)
		}
		if buyer.Blocked {
			return ErrUserBlocked
		}
		v, err := s.Vehicles.GetTx(ctx, tx, r.VehicleID)
		if err != nil {
			return fmt.Errorf("load vehicle: %w", err)
		}

		purchase = model.Purchase{
			ReservationID: r.ID,
			VehicleID:     v.ID,
			BuyerID:       buyerID,
			PriceCents:    v.PriceCents,
		}
		if err := s.Purchases.CreateTx(ctx, tx, &purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := r.Transition(model.ReservationCompleted); err != nil {
			return ErrReservationFinished
		}
		if err := s.Reservations.SetStatusTx(ctx, tx, r.ID, r.Status, nil); err != nil {
			return fmt.Errorf("complete reservation: %w", err)
		}
		if err := v.Transition(model.VehicleSold); err != nil {
			return ErrVehicleUnavailable
		}
		if err := s.Vehicles.SetStatusTx(ctx, tx, v.ID, v.Status); err != nil {
			return fmt.Errorf("mark vehicle sold: %w", err)
		}
		vehicle = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyEntity(ctx, buyerID, model.NotifyPurchaseConfirmed,
		"Purchase confirmed",
		fmt.Sprintf("Your purchase of %s %s is awaiting payment.", vehicle.Make, vehicle.Model),
		"PURCHASE", purchase.ID)
	s.notifyEntity(ctx, vehicle.SellerID, model.NotifyPurchaseConfirmed,
		"Vehicle sold",
		fmt.Sprintf("Your %s %s was sold.", vehicle.Make, vehicle.Model),
		"PURCHASE", purchase.ID)
	return &purchase, nil
}

// SweepResult summarizes one expiration pass for logging.
type SweepResult struct {
	Expired         int
	VisitsCancelled int64
}

// SweepExpired expires every PENDING reservation past its expiry, releases
// the vehicles and cascade-cancels the pair's pending visits. The whole
// batch commits in one transaction; a failure rolls everything back and the
// next tick retries. Running it again immediately is a no-op because
// expired rows no longer match the PENDING filter.
func (s *ReservationService) SweepExpired(ctx context.Context) (SweepResult, error) {
	var out SweepResult
	var expired []model.Reservation
	err := s.Tx.InTx(ctx, func(tx *sql.Tx) error {
		rows, err := s.Reservations.ListExpiredPendingTx(ctx, tx, s.Now())
		if err != nil {
			return fmt.Errorf("list expired: %w", err)
		}
		for _, r := range rows {
			if err := s.Reservations.SetStatusTx(ctx, tx, r.ID, model.ReservationExpired, nil); err != nil {
				return fmt.Errorf("expire reservation %d: %w", r.ID, err)
			}
			v, err := s.Vehicles.GetTx(ctx, tx, r.VehicleID)
			if err != nil {
				return fmt.Errorf("load vehicle %d: %w", r.VehicleID, err)
			}
			if v.Status == model.VehicleReserved {
				if err := s.Vehicles.SetStatusTx(ctx, tx, v.ID, model.VehicleActive); err != nil {
					return fmt.Errorf("release vehicle %d: %w", v.ID, err)
				}
			}
			n, err := s.Visits.CancelPendingTx(ctx, tx, r.VehicleID, r.BuyerID, CascadeCancelReason)
			if err != nil {
				return fmt.Errorf("cascade cancel visits: %w", err)
			}
			out.VisitsCancelled += n
			out.Expired++
		}
		expired = rows
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}

	for _, r := range expired {
		s.notify(ctx, r.BuyerID, model.NotifyReservationExpired,
			"Reservation expired",
			"Your reservation expired and the vehicle was released.", r.ID)
	}
	return out, nil
}

// IsVehicleAvailable reports whether the vehicle has not definitively left
// the marketplace (status ACTIVE or RESERVED).
func (s *ReservationService) IsVehicleAvailable(ctx context.Context, vehicleID uint64) (bool, error) {
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrVehicleNotFound
		}
		return false, err
	}
	return v.Status.Available(), nil
}

// notify delivers best-effort after the owning transaction committed.
func (s *ReservationService) notify(ctx context.Context, userID uint64, kind, subject, body string, entityID uint64) {
	s.notifyEntity(ctx, userID, kind, subject, body, "RESERVATION", entityID)
}

func (s *ReservationService) notifyEntity(ctx context.Context, userID uint64, kind, subject, body, entityType string, entityID uint64) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, model.Notification{
		UserID:     userID,
		Kind:       kind,
		Subject:    subject,
		Body:       body,
		EntityType: &entityType,
		EntityID:   &entityID,
	})
}
