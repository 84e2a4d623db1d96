package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) // a Monday

func newReservationService(vehicles *fakeVehicleStore, reservations *fakeReservationStore,
	users *fakeUserStore, visits *fakeVisitStore, purchases *fakePurchaseStore, notifier *fakeNotifier) *ReservationService {
	return &ReservationService{
		Tx:           fakeTx{},
		Vehicles:     vehicles,
		Reservations: reservations,
		Users:        users,
		Visits:       visits,
		Purchases:    purchases,
		Notifier:     notifier,
		Now:          func() time.Time { return testNow },
	}
}

func activeVehicle(id, sellerID uint64) model.Vehicle {
	return model.Vehicle{
		ID:         id,
		SellerID:   sellerID,
		Make:       "Toyota",
		Model:      "Corolla",
		Year:       2021,
		PriceCents: 8_500_000,
		Status:     model.VehicleActive,
	}
}

func TestReservationCreate(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	users := newFakeUserStore(model.User{ID: 20, Role: model.RoleCustomer})
	notifier := &fakeNotifier{}
	svc := newReservationService(vehicles, reservations, users, newFakeVisitStore(), &fakePurchaseStore{}, notifier)

	res, err := svc.Create(context.Background(), 1, 20, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, model.ReservationPending, res.Status)
	assert.NotEmpty(t, res.Code)
	assert.Equal(t, testNow.Add(DefaultValidityDays*24*time.Hour), res.ExpiresAt)

	v, _ := vehicles.GetByID(context.Background(), 1)
	assert.Equal(t, model.VehicleReserved, v.Status)

	// Buyer and seller are both told.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, uint64(20), notifier.sent[0].UserID)
	assert.Equal(t, uint64(10), notifier.sent[1].UserID)
	assert.Equal(t, []string{model.NotifyReservationCreated, model.NotifyReservationCreated}, notifier.kinds())
}

func TestReservationCreateRejections(t *testing.T) {
	t.Run("validity out of range", func(t *testing.T) {
		svc := newReservationService(newFakeVehicleStore(activeVehicle(1, 10)), newFakeReservationStore(),
			newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})
		_, err := svc.Create(context.Background(), 1, 20, 31, nil)
		assert.ErrorIs(t, err, ErrInvalidValidity)
	})

	t.Run("vehicle missing", func(t *testing.T) {
		svc := newReservationService(newFakeVehicleStore(), newFakeReservationStore(),
			newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})
		_, err := svc.Create(context.Background(), 99, 20, 7, nil)
		assert.ErrorIs(t, err, ErrVehicleNotFound)
	})

	t.Run("vehicle already reserved", func(t *testing.T) {
		v := activeVehicle(1, 10)
		v.Status = model.VehicleReserved
		svc := newReservationService(newFakeVehicleStore(v), newFakeReservationStore(),
			newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})
		_, err := svc.Create(context.Background(), 1, 20, 7, nil)
		assert.ErrorIs(t, err, ErrAlreadyReserved)
	})

	t.Run("vehicle paused", func(t *testing.T) {
		v := activeVehicle(1, 10)
		v.Status = model.VehiclePaused
		svc := newReservationService(newFakeVehicleStore(v), newFakeReservationStore(),
			newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})
		_, err := svc.Create(context.Background(), 1, 20, 7, nil)
		assert.ErrorIs(t, err, ErrVehicleUnavailable)
	})

	t.Run("blocked buyer", func(t *testing.T) {
		svc := newReservationService(newFakeVehicleStore(activeVehicle(1, 10)), newFakeReservationStore(),
			newFakeUserStore(model.User{ID: 20, Blocked: true}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})
		_, err := svc.Create(context.Background(), 1, 20, 7, nil)
		assert.ErrorIs(t, err, ErrUserBlocked)
	})
}

func TestReservationCreateSecondBuyerLoses(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	users := newFakeUserStore(model.User{ID: 20}, model.User{ID: 21})
	svc := newReservationService(vehicles, reservations, users, newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})

	_, err := svc.Create(context.Background(), 1, 20, 7, nil)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 1, 21, 7, nil)
	assert.ErrorIs(t, err, ErrAlreadyReserved)

	// Only the winner's reservation exists.
	n, _ := reservations.CountOtherValidTx(context.Background(), nil, 1, 0)
	assert.Equal(t, 1, n)
}

func TestReservationCancel(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	users := newFakeUserStore(model.User{ID: 20})
	notifier := &fakeNotifier{}
	svc := newReservationService(vehicles, reservations, users, newFakeVisitStore(), &fakePurchaseStore{}, notifier)

	res, err := svc.Create(context.Background(), 1, 20, 7, nil)
	require.NoError(t, err)

	t.Run("stranger is rejected", func(t *testing.T) {
		err := svc.Cancel(context.Background(), res.ID, 999, "nope")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("buyer cancels and vehicle is released", func(t *testing.T) {
		require.NoError(t, svc.Cancel(context.Background(), res.ID, 20, "changed my mind"))

		stored, err := reservations.GetTx(context.Background(), nil, res.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationCancelled, stored.Status)
		require.NotNil(t, stored.CancelReason)
		assert.Equal(t, "changed my mind", *stored.CancelReason)

		v, _ := vehicles.GetByID(context.Background(), 1)
		assert.Equal(t, model.VehicleActive, v.Status)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		err := svc.Cancel(context.Background(), res.ID, 20, "again")
		assert.ErrorIs(t, err, ErrReservationFinished)
	})
}

func TestReservationSellerCanCancel(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	svc := newReservationService(vehicles, newFakeReservationStore(),
		newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})

	res, err := svc.Create(context.Background(), 1, 20, 7, nil)
	require.NoError(t, err)

	assert.NoError(t, svc.Cancel(context.Background(), res.ID, 10, "sold offline"))
}

func TestReservationConfirm(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	svc := newReservationService(vehicles, reservations,
		newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})

	res, err := svc.Create(context.Background(), 1, 20, 7, nil)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), res.ID, 999)
	assert.ErrorIs(t, err, ErrForbidden)

	confirmed, err := svc.Confirm(context.Background(), res.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, confirmed.Status)

	// A confirmed reservation no longer expires.
	svc.Now = func() time.Time { return testNow.Add(100 * 24 * time.Hour) }
	out, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Expired)
}

func TestReservationConfirmPurchase(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	purchases := &fakePurchaseStore{}
	notifier := &fakeNotifier{}
	svc := newReservationService(vehicles, reservations,
		newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), purchases, notifier)

	res, err := svc.Create(context.Background(), 1, 20, 7, nil)
	require.NoError(t, err)

	t.Run("only the buyer may purchase", func(t *testing.T) {
		_, err := svc.ConfirmPurchase(context.Background(), res.ID, 999)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("happy path", func(t *testing.T) {
		p, err := svc.ConfirmPurchase(context.Background(), res.ID, 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(8_500_000), p.PriceCents)
		assert.Equal(t, model.PurchasePendingPayment, p.Status)

		stored, _ := reservations.GetTx(context.Background(), nil, res.ID)
		assert.Equal(t, model.ReservationCompleted, stored.Status)

		v, _ := vehicles.GetByID(context.Background(), 1)
		assert.Equal(t, model.VehicleSold, v.Status)
	})

	t.Run("finished reservation cannot be purchased again", func(t *testing.T) {
		_, err := svc.ConfirmPurchase(context.Background(), res.ID, 20)
		assert.ErrorIs(t, err, ErrReservationFinished)
	})
}

func TestReservationConfirmPurchaseExpired(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	svc := newReservationService(vehicles, newFakeReservationStore(),
		newFakeUserStore(model.User{ID: 20}), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})

	res, err := svc.Create(context.Background(), 1, 20, 1, nil)
	require.NoError(t, err)

	svc.Now = func() time.Time { return testNow.Add(48 * time.Hour) }
	_, err = svc.ConfirmPurchase(context.Background(), res.ID, 20)
	assert.ErrorIs(t, err, ErrReservationExpired)
}

func TestSweepExpired(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	reservations := newFakeReservationStore()
	visits := newFakeVisitStore()
	notifier := &fakeNotifier{}
	svc := newReservationService(vehicles, reservations,
		newFakeUserStore(model.User{ID: 20}), visits, &fakePurchaseStore{}, notifier)

	res, err := svc.Create(context.Background(), 1, 20, 1, nil)
	require.NoError(t, err)
	notifier.sent = nil

	// A pending visit by the same buyer on the same vehicle rides along.
	visit := model.Visit{VehicleID: 1, BuyerID: 20, SellerID: 10, ScheduledAt: testNow.Add(72 * time.Hour)}
	require.NoError(t, visits.Create(context.Background(), &visit))

	// Before the deadline nothing happens.
	out, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Expired)

	svc.Now = func() time.Time { return testNow.Add(25 * time.Hour) }
	out, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.Expired)
	assert.Equal(t, int64(1), out.VisitsCancelled)

	stored, _ := reservations.GetTx(context.Background(), nil, res.ID)
	assert.Equal(t, model.ReservationExpired, stored.Status)

	v, _ := vehicles.GetByID(context.Background(), 1)
	assert.Equal(t, model.VehicleActive, v.Status)

	cascaded, _ := visits.GetByID(context.Background(), visit.ID)
	assert.Equal(t, model.VisitCancelled, cascaded.Status)
	require.NotNil(t, cascaded.CancelReason)
	assert.Equal(t, CascadeCancelReason, *cascaded.CancelReason)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.NotifyReservationExpired, notifier.sent[0].Kind)

	// Running again is a no-op.
	out, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Expired)
}

func TestIsVehicleAvailable(t *testing.T) {
	active := activeVehicle(1, 10)
	sold := activeVehicle(2, 10)
	sold.Status = model.VehicleSold
	reserved := activeVehicle(3, 10)
	reserved.Status = model.VehicleReserved

	svc := newReservationService(newFakeVehicleStore(active, sold, reserved), newFakeReservationStore(),
		newFakeUserStore(), newFakeVisitStore(), &fakePurchaseStore{}, &fakeNotifier{})

	ok, err := svc.IsVehicleAvailable(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsVehicleAvailable(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsVehicleAvailable(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.IsVehicleAvailable(context.Background(), 99)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}
