package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
)

func TestBuildVehicleFilterDefaultsToActive(t *testing.T) {
	cond, args := buildVehicleFilter(VehicleSearchQuery{})
	assert.Equal(t, "v.status = ?", cond)
	require.Len(t, args, 1)
	assert.Equal(t, model.VehicleActive, args[0])
}

func TestBuildVehicleFilterComposesClauses(t *testing.T) {
	cond, args := buildVehicleFilter(VehicleSearchQuery{
		Make:       "Toyota",
		Model:      "Corolla",
		YearMin:    2015,
		YearMax:    2020,
		PriceMin:   500_000,
		PriceMax:   2_000_000,
		MileageMax: 90_000,
	})
	assert.Equal(t,
		"v.status = ? AND LOWER(v.make) = ? AND LOWER(v.model) LIKE ? AND v.year >= ? AND v.year <= ? AND v.price_cents >= ? AND v.price_cents <= ? AND v.mileage_km <= ?",
		cond)
	require.Len(t, args, 8)
	assert.Equal(t, "toyota", args[1])
	assert.Equal(t, "%corolla%", args[2])
	assert.Equal(t, 2015, args[3])
	assert.Equal(t, uint64(2_000_000), args[6])
}

func TestBuildVehicleFilterFreeText(t *testing.T) {
	cond, args := buildVehicleFilter(VehicleSearchQuery{Text: "Diesel"})
	assert.Contains(t, cond, "LOWER(v.description) LIKE ?")
	require.Len(t, args, 4) // status + three LIKE params
	assert.Equal(t, "%diesel%", args[1])
	assert.Equal(t, "%diesel%", args[3])
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "v.price_cents ASC", orderClause("price_asc"))
	assert.Equal(t, "v.price_cents DESC", orderClause("PRICE_DESC"))
	assert.Equal(t, "v.year DESC", orderClause("year_desc"))
	assert.Equal(t, "v.created_at DESC", orderClause(""))
	assert.Equal(t, "v.created_at DESC", orderClause("drop table"))
}
