package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// ScheduleVisit handles POST /v1/vehicles/:id/visits.  The requested time
// is RFC 3339; the service enforces lead time, weekday and showroom-hour
// rules plus the per-day quota.
func (h *CustomerHandler) ScheduleVisit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	vehicleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle id"})
	}
	var body struct {
		ScheduledAt string  `json:"scheduled_at"`
		Notes       *string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(body.ScheduledAt))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scheduled_at must be RFC3339"})
	}

	visit, err := h.Visits.Schedule(c.Request().Context(), vehicleID, userID, at, body.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":           visit.ID,
		"status":       visit.Status,
		"scheduled_at": visit.ScheduledAt.Format(time.RFC3339),
	})
}

// CancelVisit handles POST /v1/visits/:id/cancel.  Both parties may
// cancel; the service checks the actor.
func (h *CustomerHandler) CancelVisit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	visitID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid visit id"})
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

	if err := h.Visits.Cancel(c.Request().Context(), visitID, userID, reason); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListVisits handles GET /v1/visits for the buyer.
func (h *CustomerHandler) ListVisits(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.VisitRepo.ListByBuyer(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
