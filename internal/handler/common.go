// Package handler exposes the HTTP handlers for both authenticated and
// public endpoints.  Handlers parse and validate input, delegate business
// decisions to the service layer and translate its sentinel errors into
// HTTP status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/service"
)

// getUserID extracts the user_id placed in the context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// statusFor maps service sentinel errors onto HTTP status codes.  Unknown
// errors surface as 500 so the generic handler path logs them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrVehicleNotFound),
		errors.Is(err, service.ErrBuyerNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrVisitNotFound),
		errors.Is(err, service.ErrSellerNotFound),
		errors.Is(err, service.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrUserBlocked):
		return http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyReserved),
		errors.Is(err, service.ErrReservationFinished),
		errors.Is(err, service.ErrVisitFinished),
		errors.Is(err, service.ErrVisitQuota),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrVehicleUnavailable),
		errors.Is(err, service.ErrInvalidValidity),
		errors.Is(err, service.ErrReservationExpired),
		errors.Is(err, service.ErrVisitNotDue):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail renders a service error as the standard JSON error shape.
func fail(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return c.JSON(code, echo.Map{"error": "internal error"})
	}
	return c.JSON(code, echo.Map{"error": err.Error()})
}
