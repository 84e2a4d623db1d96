package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Gabinights/AutoMarket-sub000/internal/cache"
)

// RequireNotBlocked rejects requests from blocked accounts.  The check
// goes through the Redis-backed block-status cache so it stays cheap on
// the hot path; moderation invalidates the cache when it flips the flag.
// JWTAuth must run first.
func RequireNotBlocked(blocks *cache.BlockStatusCache) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := contextUserID(c)
			if uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			blocked, err := blocks.IsBlocked(c.Request().Context(), uid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if blocked {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account blocked"})
			}
			return next(c)
		}
	}
}

// contextUserID normalizes the user_id claim, which arrives as float64
// from JSON decoding but may be set as other numeric types in tests.
func contextUserID(c echo.Context) uint64 {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t
	case int:
		return uint64(t)
	case int64:
		return uint64(t)
	case float64:
		return uint64(t)
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
