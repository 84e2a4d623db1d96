package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

// CustomerHandler covers the buyer-side endpoints: placing and managing
// reservations, confirming purchases and scheduling visits.  All methods
// assume JWT authentication and role validation already ran in middleware.
type CustomerHandler struct {
	Reservations *service.ReservationService
	Visits       *service.VisitService
	ResRepo      *repository.ReservationRepo
	VisitRepo    *repository.VisitRepo
	ReportRepo   *repository.ReportRepo
}

func NewCustomerHandler(reservations *service.ReservationService, visits *service.VisitService,
	resRepo *repository.ReservationRepo, visitRepo *repository.VisitRepo, reportRepo *repository.ReportRepo) *CustomerHandler {
	if reservations == nil || visits == nil || resRepo == nil || visitRepo == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		Reservations: reservations,
		Visits:       visits,
		ResRepo:      resRepo,
		VisitRepo:    visitRepo,
		ReportRepo:   reportRepo,
	}
}

// CreateReservation handles POST /v1/vehicles/:id/reservations.  The
// validity window defaults server-side when omitted.
func (h *CustomerHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	var body struct {
		ValidityDays int     `json:"validity_days"`
		Notes        *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Reservations.Create(c.Request().Context(), vehicleID, userID, body.ValidityDays, body.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         res.ID,
		"code":       res.Code,
		"status":     res.Status,
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
	})
}

// CancelReservation handles POST /v1/reservations/:id/cancel for the
// buyer.  Sellers cancel through their own surface; the service checks
// both sides.
func (h *CustomerHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	reason := strings.TrimSpace(body.Reason)
	if reason == "" {
		reason = "cancelled by user"
	}

	if err := h.Reservations.Cancel(c.Request().Context(), resID, userID, reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmPurchase handles POST /v1/reservations/:id/purchase.
func (h *CustomerHandler) ConfirmPurchase(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	p, err := h.Reservations.ConfirmPurchase(c.Request().Context(), resID, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          p.ID,
		"vehicle_id":  p.VehicleID,
		"price_cents": p.PriceCents,
		"status":      p.Status,
	})
}

// ListReservations handles GET /v1/reservations and returns the buyer's
// reservations newest first, with vehicle details joined in.
func (h *CustomerHandler) ListReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.ResRepo.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// CreateReport handles POST /v1/reports: a signed-in user flags a vehicle
// or another user for moderation.
func (h *CustomerHandler) CreateReport(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TargetType  string  `json:"target_type"`
		TargetID    uint64  `json:"target_id"`
		Reason      string  `json:"reason"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	targetType := strings.ToUpper(strings.TrimSpace(body.TargetType))
	if targetType != "VEHICLE" && targetType != "USER" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_type must be VEHICLE or USER"})
	}
	if body.TargetID == 0 || strings.TrimSpace(body.Reason) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_id and reason required"})
	}

	report := model.Report{
		ReporterID:  userID,
		TargetType:  targetType,
		TargetID:    body.TargetID,
		Reason:      strings.TrimSpace(body.Reason),
		Description: body.Description,
		Status:      model.ReportOpen,
	}
	if err := h.ReportRepo.Create(c.Request().Context(), &report); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": report.ID, "status": report.Status})
}
