package httpserver

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	apperrors "github.com/pscheid92/gamebridge/internal/platform/errors"
	"golang.org/x/time/rate"
)

// Rate limit scopes for the player routes. Each scope has its own buckets,
// so polling a record never uses up the budget for submitting a fresh code.
const (
	scopeRead   = "read"
	scopeSubmit = "submit"
)

const limiterBucketExpiry = 5 * time.Minute

// newPlayerRateLimiter limits one scope of player requests per client IP.
func newPlayerRateLimiter(scope string, ratePerSecond float64, burst int) echo.MiddlewareFunc {
	buckets := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: limiterBucketExpiry,
		},
	)
	retryAfter := strconv.Itoa(retryAfterSeconds(ratePerSecond))

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: buckets,
		DenyHandler: func(c echo.Context, clientIP string, _ error) error {
			slog.WarnContext(c.Request().Context(), "Player request rate limited",
				"scope", scope,
				"client_ip", clientIP,
				"player_id", c.Param("id"),
			)
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error:   "too many player requests",
				Type:    apperrors.TypeValidation,
				Context: map[string]any{"scope": scope},
			})
		},
	})
}

// retryAfterSeconds is the time until one more token is in the bucket.
func retryAfterSeconds(ratePerSecond float64) int {
	if ratePerSecond <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(1/ratePerSecond)))
}
