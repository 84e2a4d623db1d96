package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

// SellerHandler covers listing management and the seller sides of the
// reservation and visit lifecycles.  Only users with the SELLER role reach
// these methods; listing mutations additionally require an APPROVED
// seller profile.
type SellerHandler struct {
	Vehicles     *repository.VehicleRepo
	Sellers      *repository.SellerRepo
	Reservations *service.ReservationService
	Visits       *service.VisitService
	VisitRepo    *repository.VisitRepo
}

func NewSellerHandler(vehicles *repository.VehicleRepo, sellers *repository.SellerRepo,
	reservations *service.ReservationService, visits *service.VisitService, visitRepo *repository.VisitRepo) *SellerHandler {
	if vehicles == nil || sellers == nil || reservations == nil || visits == nil || visitRepo == nil {
		panic("nil dependency passed to NewSellerHandler")
	}
	return &SellerHandler{
		Vehicles:     vehicles,
		Sellers:      sellers,
		Reservations: reservations,
		Visits:       visits,
		VisitRepo:    visitRepo,
	}
}

// requireApproved loads the seller profile and rejects anything but
// APPROVED.
func (h *SellerHandler) requireApproved(c echo.Context, userID uint64) error {
	profile, err := h.Sellers.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "seller profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if profile.Status != model.SellerApproved {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "seller profile not approved"})
	}
	return nil
}

type vehicleReq struct {
	Make        string   `json:"make"`
	Model       string   `json:"model"`
	Year        uint16   `json:"year"`
	PriceCents  uint64   `json:"price_cents"`
	MileageKM   uint32   `json:"mileage_km"`
	Condition   string   `json:"condition"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

func (r *vehicleReq) validate() string {
	r.Make = strings.TrimSpace(r.Make)
	r.Model = strings.TrimSpace(r.Model)
	r.Condition = strings.ToUpper(strings.TrimSpace(r.Condition))
	if r.Make == "" || r.Model == "" {
		return "make and model required"
	}
	if r.Year < 1900 || int(r.Year) > time.Now().UTC().Year()+1 {
		return "invalid year"
	}
	if r.PriceCents == 0 {
		return "price_cents required"
	}
	if r.Condition != "NEW" && r.Condition != "USED" {
		return "condition must be NEW or USED"
	}
	return ""
}

// CreateVehicle handles POST /v1/seller/vehicles.  New listings go live
// as ACTIVE immediately.
func (h *SellerHandler) CreateVehicle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if resp := h.requireApproved(c, userID); resp != nil {
		return resp
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	v := model.Vehicle{
		SellerID:    userID,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PriceCents:  req.PriceCents,
		MileageKM:   req.MileageKM,
		Condition:   req.Condition,
		Description: strings.TrimSpace(req.Description),
		Status:      model.VehicleActive,
		ImageKeys:   req.Images,
	}
	if err := h.Vehicles.Create(c.Request().Context(), &v); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create vehicle failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": v.ID, "status": v.Status})
}

// UpdateVehicle handles PUT /v1/seller/vehicles/:id.  Ownership is
// enforced in the repository; updating another seller's listing responds
// 403.
func (h *SellerHandler) UpdateVehicle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if resp := h.requireApproved(c, userID); resp != nil {
		return resp
	}
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	v := model.Vehicle{
		ID:          vehicleID,
		SellerID:    userID,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PriceCents:  req.PriceCents,
		MileageKM:   req.MileageKM,
		Condition:   req.Condition,
		Description: strings.TrimSpace(req.Description),
	}
	if err := h.Vehicles.Update(c.Request().Context(), &v); err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not your vehicle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update vehicle failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// setOwnStatus applies a guarded status transition to a vehicle the
// caller owns.
func (h *SellerHandler) setOwnStatus(c echo.Context, to model.VehicleStatus) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	ctx := c.Request().Context()
	v, err := h.Vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if v.SellerID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your vehicle"})
	}
	if err := v.Transition(to); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "status change not allowed"})
	}
	if err := h.Vehicles.SetStatus(ctx, v.ID, v.Status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": v.ID, "status": v.Status})
}

// PauseVehicle handles POST /v1/seller/vehicles/:id/pause.  A reserved
// vehicle cannot be paused; the hold must end first.
func (h *SellerHandler) PauseVehicle(c echo.Context) error {
	return h.setOwnStatus(c, model.VehiclePaused)
}

// RelistVehicle handles POST /v1/seller/vehicles/:id/relist.
func (h *SellerHandler) RelistVehicle(c echo.Context) error {
	return h.setOwnStatus(c, model.VehicleActive)
}

// RemoveVehicle handles DELETE /v1/seller/vehicles/:id.  Removal is a
// soft delete: the row stays for reservation and purchase history.
func (h *SellerHandler) RemoveVehicle(c echo.Context) error {
	return h.setOwnStatus(c, model.VehicleRemoved)
}

// ListVehicles handles GET /v1/seller/vehicles and returns every listing
// of the caller regardless of status.
func (h *SellerHandler) ListVehicles(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Vehicles.ListBySeller(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// Profile handles GET /v1/seller/profile so sellers can check their
// approval status and any rejection reason.
func (h *SellerHandler) Profile(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	profile, err := h.Sellers.GetByUserID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seller profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dealership_name":  profile.DealershipName,
		"status":           profile.Status,
		"rejection_reason": profile.RejectionReason,
	})
}

// Resubmit handles POST /v1/seller/profile/resubmit: a rejected seller
// asks for another review after fixing the profile.
func (h *SellerHandler) Resubmit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		DealershipName string `json:"dealership_name"`
		Document       string `json:"document"`
	}
	_ = c.Bind(&body)

	ctx := c.Request().Context()
	profile, err := h.Sellers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seller profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := profile.Resubmit(); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "profile is not rejected"})
	}
	if name := strings.TrimSpace(body.DealershipName); name != "" {
		profile.DealershipName = name
	}
	if doc := strings.TrimSpace(body.Document); doc != "" {
		profile.Document = doc
	}
	if err := h.Sellers.Update(ctx, &profile); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": profile.Status})
}
