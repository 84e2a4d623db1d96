package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ConfirmReservation handles POST /v1/seller/reservations/:id/confirm:
// the seller acknowledges a pending hold so it stops expiring.
func (h *SellerHandler) ConfirmReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.Confirm(c.Request().Context(), resID, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": res.ID, "status": res.Status})
}

// CancelReservation handles POST /v1/seller/reservations/:id/cancel.
func (h *SellerHandler) CancelReservation(c echo.Context) error {
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
		reason = "cancelled by seller"
	}
	if err := h.Reservations.Cancel(c.Request().Context(), resID, userID, reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// sellerNotes reads the optional notes body shared by the visit close-out
// endpoints.
func sellerNotes(c echo.Context) *string {
	var body struct {
		Notes *string `json:"notes"`
	}
	_ = c.Bind(&body)
	return body.Notes
}

// ConfirmVisit handles POST /v1/seller/visits/:id/confirm.
func (h *SellerHandler) ConfirmVisit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	visitID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
	}
	if err := h.Visits.Confirm(c.Request().Context(), visitID, userID, sellerNotes(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// VisitRealized handles POST /v1/seller/visits/:id/realized, recording
// that the viewing took place.
func (h *SellerHandler) VisitRealized(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	visitID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
	}
	if err := h.Visits.MarkRealized(c.Request().Context(), visitID, userID, sellerNotes(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// VisitNotRealized handles POST /v1/seller/visits/:id/not-realized for
// no-shows.
func (h *SellerHandler) VisitNotRealized(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	visitID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
	}
	if err := h.Visits.MarkNotRealized(c.Request().Context(), visitID, userID, sellerNotes(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListVisits handles GET /v1/seller/visits.
func (h *SellerHandler) ListVisits(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.VisitRepo.ListBySeller(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
