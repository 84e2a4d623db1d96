package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

func newVisitService(visits *fakeVisitStore, vehicles *fakeVehicleStore, users *fakeUserStore, notifier *fakeNotifier) *VisitService {
	return &VisitService{
		Visits:   visits,
		Vehicles: vehicles,
		Users:    users,
		Notifier: notifier,
		Now:      func() time.Time { return testNow },
	}
}

// testNow is Monday 08:00 UTC; the Tuesday slot below is well inside
// showroom hours.
var visitSlot = testNow.Add(26 * time.Hour) // Tuesday 10:00

func TestVisitSchedule(t *testing.T) {
	visits := newFakeVisitStore()
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	users := newFakeUserStore(model.User{ID: 20})
	notifier := &fakeNotifier{}
	svc := newVisitService(visits, vehicles, users, notifier)

	visit, err := svc.Schedule(context.Background(), 1, 20, visitSlot, nil)
	require.NoError(t, err)

	assert.Equal(t, model.VisitPending, visit.Status)
	assert.Equal(t, uint64(10), visit.SellerID, "seller is taken from the vehicle")
	assert.Equal(t, visitSlot, visit.ScheduledAt)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint64(10), notifier.sent[0].UserID)
	assert.Equal(t, model.NotifyVisitScheduled, notifier.sent[0].Kind)
}

func TestVisitScheduleRejections(t *testing.T) {
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	users := newFakeUserStore(model.User{ID: 20}, model.User{ID: 21, Blocked: true})

	cases := []struct {
		name    string
		at      time.Time
		buyerID uint64
		want    error
	}{
		{"too soon", testNow.Add(30 * time.Minute), 20, model.ErrVisitTooSoon},
		{"weekend", testNow.Add(5 * 24 * time.Hour).Add(2 * time.Hour), 20, model.ErrVisitOnWeekend}, // Saturday
		{"before opening", visitSlot.Add(-2 * time.Hour), 20, model.ErrVisitOutsideHours},            // 08:00
		{"at closing", visitSlot.Add(8 * time.Hour), 20, model.ErrVisitOutsideHours},                 // 18:00
		{"blocked buyer", visitSlot, 21, ErrUserBlocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newVisitService(newFakeVisitStore(), vehicles, users, &fakeNotifier{})
			_, err := svc.Schedule(context.Background(), 1, tc.buyerID, tc.at, nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("sold vehicle", func(t *testing.T) {
		v := activeVehicle(2, 10)
		v.Status = model.VehicleSold
		svc := newVisitService(newFakeVisitStore(), newFakeVehicleStore(v), users, &fakeNotifier{})
		_, err := svc.Schedule(context.Background(), 2, 20, visitSlot, nil)
		assert.ErrorIs(t, err, ErrVehicleUnavailable)
	})

	t.Run("removed vehicle", func(t *testing.T) {
		v := activeVehicle(3, 10)
		v.Status = model.VehicleRemoved
		svc := newVisitService(newFakeVisitStore(), newFakeVehicleStore(v), users, &fakeNotifier{})
		_, err := svc.Schedule(context.Background(), 3, 20, visitSlot, nil)
		assert.ErrorIs(t, err, ErrVehicleUnavailable)
	})

	t.Run("paused vehicle stays visitable", func(t *testing.T) {
		v := activeVehicle(4, 10)
		v.Status = model.VehiclePaused
		svc := newVisitService(newFakeVisitStore(), newFakeVehicleStore(v), users, &fakeNotifier{})
		_, err := svc.Schedule(context.Background(), 4, 20, visitSlot, nil)
		assert.NoError(t, err)
	})
}

func TestVisitScheduleQuota(t *testing.T) {
	visits := newFakeVisitStore()
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	users := newFakeUserStore(model.User{ID: 20})
	svc := newVisitService(visits, vehicles, users, &fakeNotifier{})

	for i := 0; i < MaxVisitsPerVehicleDay; i++ {
		_, err := svc.Schedule(context.Background(), 1, 20, visitSlot.Add(time.Duration(i)*time.Hour), nil)
		require.NoError(t, err)
	}

	_, err := svc.Schedule(context.Background(), 1, 20, visitSlot.Add(6*time.Hour), nil)
	assert.ErrorIs(t, err, ErrVisitQuota)

	// The next day still has room.
	_, err = svc.Schedule(context.Background(), 1, 20, visitSlot.Add(24*time.Hour), nil)
	assert.NoError(t, err)
}

func TestVisitConfirmAndCancel(t *testing.T) {
	visits := newFakeVisitStore()
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	users := newFakeUserStore(model.User{ID: 20})
	notifier := &fakeNotifier{}
	svc := newVisitService(visits, vehicles, users, notifier)

	visit, err := svc.Schedule(context.Background(), 1, 20, visitSlot, nil)
	require.NoError(t, err)
	notifier.sent = nil

	t.Run("only the seller confirms", func(t *testing.T) {
		err := svc.Confirm(context.Background(), visit.ID, 20, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("seller confirms", func(t *testing.T) {
		require.NoError(t, svc.Confirm(context.Background(), visit.ID, 10, nil))
		stored, _ := visits.GetByID(context.Background(), visit.ID)
		assert.Equal(t, model.VisitConfirmed, stored.Status)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, uint64(20), notifier.sent[0].UserID)
	})

	t.Run("buyer cancels, seller is told", func(t *testing.T) {
		notifier.sent = nil
		require.NoError(t, svc.Cancel(context.Background(), visit.ID, 20, "cannot make it"))

		stored, _ := visits.GetByID(context.Background(), visit.ID)
		assert.Equal(t, model.VisitCancelled, stored.Status)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, uint64(10), notifier.sent[0].UserID)
		assert.Equal(t, model.NotifyVisitCancelled, notifier.sent[0].Kind)
	})

	t.Run("cancelled visit is finished", func(t *testing.T) {
		err := svc.Cancel(context.Background(), visit.ID, 20, "again")
		assert.ErrorIs(t, err, ErrVisitFinished)
	})
}

func TestVisitCloseOut(t *testing.T) {
	visits := newFakeVisitStore()
	vehicles := newFakeVehicleStore(activeVehicle(1, 10))
	users := newFakeUserStore(model.User{ID: 20})
	svc := newVisitService(visits, vehicles, users, &fakeNotifier{})

	visit, err := svc.Schedule(context.Background(), 1, 20, visitSlot, nil)
	require.NoError(t, err)

	t.Run("not due yet", func(t *testing.T) {
		err := svc.MarkRealized(context.Background(), visit.ID, 10, nil)
		assert.ErrorIs(t, err, ErrVisitNotDue)
	})

	svc.Now = func() time.Time { return visitSlot.Add(time.Hour) }

	t.Run("only the seller closes out", func(t *testing.T) {
		err := svc.MarkRealized(context.Background(), visit.ID, 20, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("realized with notes", func(t *testing.T) {
		notes := "buyer liked the car"
		require.NoError(t, svc.MarkRealized(context.Background(), visit.ID, 10, &notes))

		stored, _ := visits.GetByID(context.Background(), visit.ID)
		assert.Equal(t, model.VisitRealized, stored.Status)
		require.NotNil(t, stored.SellerNotes)
		assert.Equal(t, notes, *stored.SellerNotes)
	})

	t.Run("terminal state", func(t *testing.T) {
		err := svc.MarkNotRealized(context.Background(), visit.ID, 10, nil)
		assert.ErrorIs(t, err, ErrVisitFinished)
	})
}

func TestVisitMarkNotRealized(t *testing.T) {
	visits := newFakeVisitStore()
	svc := newVisitService(visits, newFakeVehicleStore(activeVehicle(1, 10)), newFakeUserStore(model.User{ID: 20}), &fakeNotifier{})

	visit, err := svc.Schedule(context.Background(), 1, 20, visitSlot, nil)
	require.NoError(t, err)

	svc.Now = func() time.Time { return visitSlot.Add(2 * time.Hour) }
	require.NoError(t, svc.MarkNotRealized(context.Background(), visit.ID, 10, nil))

	stored, _ := visits.GetByID(context.Background(), visit.ID)
	assert.Equal(t, model.VisitNotRealized, stored.Status)
}
