package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pulsefit/gymhub/services/logging"
	"go.uber.org/zap"
)

type Config struct {
	Store          Store
	Action         string
	MaxAttempts    int
	Window         time.Duration
	FailOpen       bool
	Logger         *logging.Service
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

// Middleware guards a route with a per-IP attempt budget. Store failures
// fail open when configured: the guarded action proceeds rather than locking
// everyone out on an infrastructure fault.
func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := cfg.KeyGenerator(c)

			limited, err := cfg.Store.IsLimited(ip, cfg.Action, cfg.MaxAttempts)
			if err != nil {
				if cfg.Logger != nil {
					cfg.Logger.Error("rate limit check failed",
						zap.Error(err),
						zap.String("action", cfg.Action))
				}
				if !cfg.FailOpen {
					return echo.NewHTTPError(http.StatusServiceUnavailable, "Service Unavailable")
				}
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.MaxAttempts))

			if limited {
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return cfg.OnLimitReached(c)
			}

			if err := cfg.Store.RecordAttempt(ip, cfg.Action, cfg.Window); err != nil && cfg.Logger != nil {
				cfg.Logger.Error("failed to record rate limit attempt",
					zap.Error(err),
					zap.String("action", cfg.Action))
			}

			return next(c)
		}
	}
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}
