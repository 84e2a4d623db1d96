package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base is a Monday at 08:00 UTC so tests can offset into any slot of the
// same week deterministically.
var base = time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)

func TestValidateVisitTimeLead(t *testing.T) {
	// less than one hour away
	assert.ErrorIs(t, ValidateVisitTime(base, base.Add(30*time.Minute)), ErrVisitTooSoon)
	// exactly one hour away is still too soon; the lead must be exceeded
	assert.ErrorIs(t, ValidateVisitTime(base, base.Add(time.Hour)), ErrVisitTooSoon)
	// in the past
	assert.ErrorIs(t, ValidateVisitTime(base, base.Add(-time.Hour)), ErrVisitTooSoon)
	// comfortably ahead within business hours
	require.NoError(t, ValidateVisitTime(base, base.Add(2*time.Hour)))
}

func TestValidateVisitTimeBusinessHours(t *testing.T) {
	day := base // Monday

	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}

	require.NoError(t, ValidateVisitTime(base, at(9, 0)))   // opening slot
	require.NoError(t, ValidateVisitTime(base, at(17, 59))) // last minute
	assert.ErrorIs(t, ValidateVisitTime(base, at(18, 0)), ErrVisitOutsideHours)
	assert.ErrorIs(t, ValidateVisitTime(base, at(20, 0)), ErrVisitOutsideHours)

	early := at(8, 30)
	assert.ErrorIs(t, ValidateVisitTime(early.Add(-2*time.Hour), early), ErrVisitOutsideHours)
}

func TestValidateVisitTimeWeekend(t *testing.T) {
	saturday := base.AddDate(0, 0, 5).Add(4 * time.Hour) // Saturday 12:00
	sunday := base.AddDate(0, 0, 6).Add(4 * time.Hour)   // Sunday 12:00

	assert.ErrorIs(t, ValidateVisitTime(base, saturday), ErrVisitOnWeekend)
	assert.ErrorIs(t, ValidateVisitTime(base, sunday), ErrVisitOnWeekend)

	friday := base.AddDate(0, 0, 4).Add(2 * time.Hour) // Friday 10:00
	require.NoError(t, ValidateVisitTime(base, friday))
}
