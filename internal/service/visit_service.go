package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

// MaxVisitsPerVehicleDay caps how many non-cancelled visits one vehicle
// can host on a single calendar day.
const MaxVisitsPerVehicleDay = 5

type visitStore interface {
	Create(ctx context.Context, v *model.Visit) error
	GetByID(ctx context.Context, id uint64) (model.Visit, error)
	SetStatus(ctx context.Context, id uint64, status model.VisitStatus, sellerNotes, cancelReason *string) error
	CountActiveOnDay(ctx context.Context, vehicleID uint64, day time.Time) (int, error)
}

type visitVehicleStore interface {
	GetByID(ctx context.Context, id uint64) (model.Vehicle, error)
}

type visitUserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// VisitService schedules showroom visits and moves them through their
// lifecycle. Visits never touch vehicle status, so unlike reservations the
// operations here run as single-statement writes without a transaction.
type VisitService struct {
	Visits   visitStore
	Vehicles visitVehicleStore
	Users    visitUserStore
	Notifier Notifier
	Now      func() time.Time
}

func NewVisitService(visits *repository.VisitRepo, vehicles *repository.VehicleRepo, users *repository.UserRepo, notifier Notifier) *VisitService {
	return &VisitService{
		Visits:   visits,
		Vehicles: vehicles,
		Users:    users,
		Notifier: notifier,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Schedule books a visit for the buyer on the vehicle at the requested
// instant. The time must pass the showroom rules, the vehicle must still
// be on the marketplace and the vehicle's daily quota must not be full.
func (s *VisitService) Schedule(ctx context.Context, vehicleID, buyerID uint64, at time.Time, notes *string) (*model.Visit, error) {
	if err := model.ValidateVisitTime(s.Now(), at); err != nil {
		return nil, err
	}
	v, err := s.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("load vehicle: %w", err)
	}
	// A paused listing can still be visited; only vehicles that left the
	// marketplace for good are off-limits.
	if v.Status == model.VehicleSold || v.Status == model.VehicleRemoved {
		return nil, ErrVehicleUnavailable
	}
	buyer, err := s.Users.GetByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("load buyer: %w", err)
	}
	if buyer.Blocked {
		return nil, ErrUserBlocked
	}
	n, err := s.Visits.CountActiveOnDay(ctx, vehicleID, at)
	if err != nil {
		return nil, fmt.Errorf("count visits: %w", err)
	}
	if n >= MaxVisitsPerVehicleDay {
		return nil, ErrVisitQuota
	}

	visit := model.Visit{
		VehicleID:   vehicleID,
		BuyerID:     buyerID,
		SellerID:    v.SellerID,
		ScheduledAt: at.UTC(),
		BuyerNotes:  notes,
	}
	if err := s.Visits.Create(ctx, &visit); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}

	s.notify(ctx, v.SellerID, model.NotifyVisitScheduled,
		"Visit scheduled",
		fmt.Sprintf("A buyer scheduled a visit for your %s %s on %s.", v.Make, v.Model, at.Format("2006-01-02 15:04")),
		visit.ID)
	return &visit, nil
}

// Confirm lets the seller acknowledge a pending visit.
func (s *VisitService) Confirm(ctx context.Context, visitID, sellerID uint64, sellerNotes *string) error {
	visit, err := s.load(ctx, visitID)
	if err != nil {
		return err
	}
	if visit.SellerID != sellerID {
		return ErrForbidden
	}
	if err := visit.Transition(model.VisitConfirmed); err != nil {
		return ErrVisitFinished
	}
	if err := s.Visits.SetStatus(ctx, visit.ID, visit.Status, sellerNotes, nil); err != nil {
		return fmt.Errorf("confirm visit: %w", err)
	}
	s.notify(ctx, visit.BuyerID, model.NotifyVisitConfirmed,
		"Visit confirmed", "The seller confirmed your visit.", visit.ID)
	return nil
}

// Cancel ends a pending or confirmed visit on behalf of the buyer or the
// seller.
func (s *VisitService) Cancel(ctx context.Context, visitID, actorID uint64, reason string) error {
	visit, err := s.load(ctx, visitID)
	if err != nil {
		return err
	}
	if actorID != visit.BuyerID && actorID != visit.SellerID {
		return ErrForbidden
	}
	if err := visit.Transition(model.VisitCancelled); err != nil {
		return ErrVisitFinished
	}
	if err := s.Visits.SetStatus(ctx, visit.ID, visit.Status, nil, &reason); err != nil {
		return fmt.Errorf("cancel visit: %w", err)
	}

	other := visit.BuyerID
	if actorID == visit.BuyerID {
		other = visit.SellerID
	}
	s.notify(ctx, other, model.NotifyVisitCancelled,
		"Visit cancelled", fmt.Sprintf("The visit was cancelled: %s", reason), visit.ID)
	return nil
}

// MarkRealized records that the visit took place. Only the seller may
// close out a visit, and only once its scheduled time has passed.
func (s *VisitService) MarkRealized(ctx context.Context, visitID, sellerID uint64, sellerNotes *string) error {
	return s.closeOut(ctx, visitID, sellerID, model.VisitRealized, sellerNotes)
}

// MarkNotRealized records that the buyer did not show up.
func (s *VisitService) MarkNotRealized(ctx context.Context, visitID, sellerID uint64, sellerNotes *string) error {
	return s.closeOut(ctx, visitID, sellerID, model.VisitNotRealized, sellerNotes)
}

func (s *VisitService) closeOut(ctx context.Context, visitID, sellerID uint64, to model.VisitStatus, sellerNotes *string) error {
	visit, err := s.load(ctx, visitID)
	if err != nil {
		return err
	}
	if visit.SellerID != sellerID {
		return ErrForbidden
	}
	if s.Now().Before(visit.ScheduledAt) {
		return ErrVisitNotDue
	}
	if err := visit.Transition(to); err != nil {
		return ErrVisitFinished
	}
	if err := s.Visits.SetStatus(ctx, visit.ID, visit.Status, sellerNotes, nil); err != nil {
		return fmt.Errorf("close visit: %w", err)
	}
	return nil
}

func (s *VisitService) load(ctx context.Context, visitID uint64) (model.Visit, error) {
	visit, err := s.Visits.GetByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Visit{}, ErrVisitNotFound
		}
		return model.Visit{}, fmt.Errorf("load visit: %w", err)
	}
	return visit, nil
}

func (s *VisitService) notify(ctx context.Context, userID uint64, kind, subject, body string, entityID uint64) {
	if s.Notifier == nil {
		return
	}
	entityType := "VISIT"
	s.Notifier.Notify(ctx, model.Notification{
		UserID:     userID,
		Kind:       kind,
		Subject:    subject,
		Body:       body,
		EntityType: &entityType,
		EntityID:   &entityID,
	})
}
