// Package ratelimit provides per-caller rate limiting for write endpoints.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/qolzam/forum/internal/types"
)

// Config holds the configuration for rate limiting middleware
type Config struct {
	// Name is used in log lines and the 429 message, e.g. "vote".
	Name string

	// Max requests per Window for one key.
	Max    int
	Window time.Duration

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// Custom key generator (optional - uses the authenticated user, then the IP)
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReached defines the response when rate limit is exceeded
	LimitReached func(c *fiber.Ctx) error
}

// configDefault sets default configuration values
func configDefault(config Config) Config {
	if config.Name == "" {
		config.Name = "request"
	}
	if config.Max <= 0 {
		config.Max = 60
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}

	if config.KeyGenerator == nil {
		config.KeyGenerator = UserKey
	}

	if config.LimitReached == nil {
		name, window := config.Name, config.Window
		config.LimitReached = func(c *fiber.Ctx) error {
			log.WarnWithContext(c.UserContext(), "[RateLimit] Rate limit exceeded for %s by %s", name, UserKey(c))

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":       "RATE_LIMIT_EXCEEDED",
				"message":    fmt.Sprintf("Too many %s attempts. Please try again later.", name),
				"retryAfter": int(window.Seconds()),
			})
		}
	}

	return config
}

// UserKey keys the limiter on the authenticated user and falls back to the client IP.
func UserKey(c *fiber.Ctx) string {
	if user, ok := c.Locals(types.UserCtxName).(types.UserContext); ok {
		return "user:" + user.UserID.String()
	}
	return "ip:" + c.IP()
}

// New creates a new rate limiting middleware handler
func New(config Config) fiber.Handler {
	cfg := configDefault(config)

	return limiter.New(limiter.Config{
		Max:          cfg.Max,
		Expiration:   cfg.Window,
		KeyGenerator: cfg.KeyGenerator,
		LimitReached: cfg.LimitReached,
		Next:         cfg.Next,
	})
}
