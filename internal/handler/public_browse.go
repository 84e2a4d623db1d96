package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

// PublicHandler serves the unauthenticated catalog.  Responses are
// sanitized: only ACTIVE and RESERVED listings are visible and seller
// contact details are limited to the display name.
type PublicHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewPublicHandler(vehicles *repository.VehicleRepo) *PublicHandler {
	if vehicles == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Vehicles: vehicles}
}

// SearchVehicles handles GET /v1/vehicles.  All filters are optional query
// parameters; invalid numeric values are ignored rather than rejected so
// sloppy clients still get a result page.
func (h *PublicHandler) SearchVehicles(c echo.Context) error {
	q := repository.VehicleSearchQuery{
		Make:  strings.TrimSpace(c.QueryParam("make")),
		Model: strings.TrimSpace(c.QueryParam("model")),
		Text:  strings.TrimSpace(c.QueryParam("q")),
		Sort:  c.QueryParam("sort"),
	}
	if n, err := strconv.Atoi(c.QueryParam("year_min")); err == nil && n > 0 {
		q.YearMin = n
	}
	if n, err := strconv.Atoi(c.QueryParam("year_max")); err == nil && n > 0 {
		q.YearMax = n
	}
	if n, err := strconv.ParseUint(c.QueryParam("price_min"), 10, 64); err == nil {
		q.PriceMin = n
	}
	if n, err := strconv.ParseUint(c.QueryParam("price_max"), 10, 64); err == nil {
		q.PriceMax = n
	}
	if n, err := strconv.ParseUint(c.QueryParam("mileage_max"), 10, 32); err == nil {
		q.MileageMax = uint32(n)
	}
	if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
		q.Page = n
	}
	if n, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && n > 0 {
		q.PageSize = n
	}

	rows, total, err := h.Vehicles.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":  rows,
		"total": total,
		"page":  q.Page,
	})
}

// publicVehicleDetail is the single-listing response with image keys.
type publicVehicleDetail struct {
	ID          uint64   `json:"id"`
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	Year        uint16   `json:"year"`
	PriceCents  uint64   `json:"price_cents"`
	MileageKM   uint32   `json:"mileage_km"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Images      []string `json:"images"`
}

// GetVehicle handles GET /v1/vehicles/:id.  Listings that left the
// marketplace (SOLD, PAUSED, REMOVED) respond 404 to the public.
func (h *PublicHandler) GetVehicle(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	v, err := h.Vehicles.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !v.Status.Available() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
	}
	return c.JSON(http.StatusOK, publicVehicleDetail{
		ID:          v.ID,
		Make:        v.Make,
		Model:       v.Model,
		Year:        v.Year,
		PriceCents:  v.PriceCents,
		MileageKM:   v.MileageKM,
		Condition:   v.Condition,
		Description: v.Description,
		Status:      string(v.Status),
		Images:      v.ImageKeys,
	})
}
