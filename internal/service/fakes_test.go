package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

// In-memory fakes for the store interfaces.  InTx passes a nil *sql.Tx;
// the fakes ignore it, so the workflows under test run exactly the code
// path production takes minus the database round trips.

type fakeTx struct{}

func (fakeTx) InTx(_ context.Context, fn func(tx *sql.Tx) error) error { return fn(nil) }

type fakeVehicleStore struct {
	vehicles map[uint64]*model.Vehicle
}

func newFakeVehicleStore(vs ...model.Vehicle) *fakeVehicleStore {
	s := &fakeVehicleStore{vehicles: map[uint64]*model.Vehicle{}}
	for i := range vs {
		v := vs[i]
		s.vehicles[v.ID] = &v
	}
	return s
}

func (s *fakeVehicleStore) GetByID(_ context.Context, id uint64) (model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, sql.ErrNoRows
	}
	return *v, nil
}

func (s *fakeVehicleStore) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (model.Vehicle, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeVehicleStore) SetStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.VehicleStatus) error {
	v, ok := s.vehicles[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.Status = status
	return nil
}

type fakeReservationStore struct {
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{reservations: map[uint64]*model.Reservation{}, nextID: 1}
}

func (s *fakeReservationStore) CreateTx(_ context.Context, _ *sql.Tx, res *model.Reservation) error {
	// Mirrors the filtered unique index on (vehicle_id) over valid rows.
	for _, r := range s.reservations {
		if r.VehicleID == res.VehicleID && r.Status.Valid() {
			return repository.ErrDuplicateReservation
		}
	}
	res.ID = s.nextID
	s.nextID++
	res.Status = model.ReservationPending
	cp := *res
	s.reservations[res.ID] = &cp
	return nil
}

func (s *fakeReservationStore) GetTx(_ context.Context, _ *sql.Tx, id uint64) (model.Reservation, error) {
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, sql.ErrNoRows
	}
	return *r, nil
}

func (s *fakeReservationStore) SetStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.ReservationStatus, cancelReason *string) error {
	r, ok := s.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.Status = status
	if cancelReason != nil {
		r.CancelReason = cancelReason
	}
	return nil
}

func (s *fakeReservationStore) ExistsValidForBuyerTx(_ context.Context, _ *sql.Tx, vehicleID, buyerID uint64) (bool, error) {
	for _, r := range s.reservations {
		if r.VehicleID == vehicleID && r.BuyerID == buyerID && r.Status.Valid() {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReservationStore) CountOtherValidTx(_ context.Context, _ *sql.Tx, vehicleID, excludeID uint64) (int, error) {
	n := 0
	for _, r := range s.reservations {
		if r.VehicleID == vehicleID && r.ID != excludeID && r.Status.Valid() {
			n++
		}
	}
	return n, nil
}

func (s *fakeReservationStore) ListExpiredPendingTx(_ context.Context, _ *sql.Tx, now time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.reservations {
		if r.Status == model.ReservationPending && now.After(r.ExpiresAt) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[uint64]*model.User
}

func newFakeUserStore(us ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[uint64]*model.User{}}
	for i := range us {
		u := us[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return *u, nil
}

func (s *fakeUserStore) GetTx(ctx context.Context, _ *sql.Tx, id uint64) (model.User, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeUserStore) SetBlocked(_ context.Context, id uint64, blocked bool, reason string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Blocked = blocked
	if blocked {
		u.BlockedReason = &reason
	} else {
		u.BlockedReason = nil
		u.BlockedAt = nil
	}
	return nil
}

func (s *fakeUserStore) ListAdmins(_ context.Context) ([]uint64, error) {
	var out []uint64
	for id, u := range s.users {
		if u.Role == model.RoleAdmin {
			out = append(out, id)
		}
	}
	return out, nil
}

type fakeVisitStore struct {
	visits map[uint64]*model.Visit
	nextID uint64
}

func newFakeVisitStore(vs ...model.Visit) *fakeVisitStore {
	s := &fakeVisitStore{visits: map[uint64]*model.Visit{}, nextID: 1}
	for i := range vs {
		v := vs[i]
		if v.ID >= s.nextID {
			s.nextID = v.ID + 1
		}
		s.visits[v.ID] = &v
	}
	return s
}

func (s *fakeVisitStore) Create(_ context.Context, v *model.Visit) error {
	v.ID = s.nextID
	s.nextID++
	v.Status = model.VisitPending
	cp := *v
	s.visits[v.ID] = &cp
	return nil
}

func (s *fakeVisitStore) GetByID(_ context.Context, id uint64) (model.Visit, error) {
	v, ok := s.visits[id]
	if !ok {
		return model.Visit{}, sql.ErrNoRows
	}
	return *v, nil
}

func (s *fakeVisitStore) SetStatus(_ context.Context, id uint64, status model.VisitStatus, sellerNotes, cancelReason *string) error {
	v, ok := s.visits[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.Status = status
	if sellerNotes != nil {
		v.SellerNotes = sellerNotes
	}
	if cancelReason != nil {
		v.CancelReason = cancelReason
	}
	return nil
}

func (s *fakeVisitStore) CountActiveOnDay(_ context.Context, vehicleID uint64, day time.Time) (int, error) {
	n := 0
	y, m, d := day.UTC().Date()
	for _, v := range s.visits {
		vy, vm, vd := v.ScheduledAt.UTC().Date()
		if v.VehicleID == vehicleID && v.Status != model.VisitCancelled && vy == y && vm == m && vd == d {
			n++
		}
	}
	return n, nil
}

func (s *fakeVisitStore) CancelPendingTx(_ context.Context, _ *sql.Tx, vehicleID, buyerID uint64, reason string) (int64, error) {
	var n int64
	for _, v := range s.visits {
		if v.VehicleID == vehicleID && v.BuyerID == buyerID && v.Status == model.VisitPending {
			v.Status = model.VisitCancelled
			r := reason
			v.CancelReason = &r
			n++
		}
	}
	return n, nil
}

type fakePurchaseStore struct {
	purchases []model.Purchase
}

func (s *fakePurchaseStore) CreateTx(_ context.Context, _ *sql.Tx, p *model.Purchase) error {
	p.ID = uint64(len(s.purchases) + 1)
	p.Status = model.PurchasePendingPayment
	s.purchases = append(s.purchases, *p)
	return nil
}

type fakeNotifier struct {
	sent []model.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, notif model.Notification) {
	n.sent = append(n.sent, notif)
}

func (n *fakeNotifier) kinds() []string {
	out := make([]string, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}
