package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicleTransitions(t *testing.T) {
	cases := []struct {
		from, to VehicleStatus
		ok       bool
	}{
		{VehicleActive, VehicleReserved, true},
		{VehicleActive, VehiclePaused, true},
		{VehicleActive, VehicleRemoved, true},
		{VehicleActive, VehicleSold, false}, // a sale always goes through a reservation
		{VehicleReserved, VehicleActive, true},
		{VehicleReserved, VehicleSold, true},
		{VehicleReserved, VehiclePaused, false},
		{VehiclePaused, VehicleActive, true},
		{VehiclePaused, VehicleRemoved, true},
		{VehicleSold, VehicleActive, false},
		{VehicleRemoved, VehicleActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestVehicleTransitionGuards(t *testing.T) {
	v := &Vehicle{Status: VehicleSold}
	err := v.Transition(VehicleActive)
	require.ErrorIs(t, err, ErrVehicleTransition)
	assert.Equal(t, VehicleSold, v.Status)

	v = &Vehicle{Status: VehicleActive}
	require.NoError(t, v.Transition(VehicleReserved))
	assert.Equal(t, VehicleReserved, v.Status)
}

func TestReservationTransitions(t *testing.T) {
	assert.True(t, ReservationPending.CanTransition(ReservationExpired))
	assert.True(t, ReservationPending.CanTransition(ReservationCancelled))
	assert.True(t, ReservationPending.CanTransition(ReservationCompleted))
	assert.True(t, ReservationConfirmed.CanTransition(ReservationCompleted))

	// only PENDING reservations expire
	assert.False(t, ReservationConfirmed.CanTransition(ReservationExpired))

	// terminal states stay terminal
	for _, s := range []ReservationStatus{ReservationExpired, ReservationCancelled, ReservationCompleted} {
		for _, to := range []ReservationStatus{ReservationPending, ReservationConfirmed, ReservationExpired, ReservationCancelled, ReservationCompleted} {
			assert.False(t, s.CanTransition(to), "%s -> %s", s, to)
		}
	}
}

func TestReservationValid(t *testing.T) {
	assert.True(t, ReservationPending.Valid())
	assert.True(t, ReservationConfirmed.Valid())
	assert.False(t, ReservationExpired.Valid())
	assert.False(t, ReservationCancelled.Valid())
	assert.False(t, ReservationCompleted.Valid())
}

func TestVisitTransitions(t *testing.T) {
	assert.True(t, VisitPending.CanTransition(VisitConfirmed))
	assert.True(t, VisitPending.CanTransition(VisitCancelled))
	assert.True(t, VisitPending.CanTransition(VisitRealized))
	assert.True(t, VisitConfirmed.CanTransition(VisitNotRealized))
	assert.False(t, VisitRealized.CanTransition(VisitCancelled))
	assert.False(t, VisitCancelled.CanTransition(VisitConfirmed))
	assert.False(t, VisitNotRealized.CanTransition(VisitRealized))
}

func TestSellerApprovalMachine(t *testing.T) {
	p := &SellerProfile{Status: SellerPending}

	// pending -> rejected requires a reason
	require.Error(t, p.Reject(""))
	require.NoError(t, p.Reject("document unreadable"))
	assert.Equal(t, SellerRejected, p.Status)
	require.NotNil(t, p.RejectionReason)

	// rejecting an already rejected profile fails
	require.ErrorIs(t, p.Reject("again"), ErrSellerTransition)

	// rejected -> pending via resubmission, then approve clears the reason
	require.NoError(t, p.Resubmit())
	assert.Equal(t, SellerPending, p.Status)
	require.NoError(t, p.Approve())
	assert.Equal(t, SellerApproved, p.Status)
	assert.Nil(t, p.RejectionReason)

	// approving twice fails, as does rejecting an approved profile
	require.ErrorIs(t, p.Approve(), ErrSellerTransition)
	require.ErrorIs(t, p.Reject("too late"), ErrSellerTransition)
}

func TestReportMachine(t *testing.T) {
	r := &Report{Status: ReportOpen}

	// cannot close without review
	require.ErrorIs(t, r.Close(1, VerdictUpheld, "skip review"), ErrReportTransition)

	require.NoError(t, r.StartAnalysis(7))
	assert.Equal(t, ReportInAnalysis, r.Status)
	require.NotNil(t, r.ReviewedBy)
	assert.Equal(t, uint64(7), *r.ReviewedBy)

	// verdict must be one of the two known values
	require.Error(t, r.Close(7, "MAYBE", "undecided"))

	require.NoError(t, r.Close(7, VerdictUpheld, "confirmed fraudulent listing"))
	assert.Equal(t, ReportClosed, r.Status)
	require.NotNil(t, r.Verdict)
	assert.Equal(t, VerdictUpheld, *r.Verdict)

	// nothing leaves CLOSED
	require.ErrorIs(t, r.StartAnalysis(7), ErrReportTransition)
}
