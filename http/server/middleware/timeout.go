package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/http/server"
)

// NewTimeoutMW bounds the request context by duration. Storage calls observe the
// deadline, so an expired request rolls back its unit of work. A non-positive
// duration disables the bound.
func NewTimeoutMW(duration time.Duration) server.Middleware {
	return server.Middleware{
		Priority: 800,
		Handler: func(c *fiber.Ctx) error {
			if duration <= 0 {
				return c.Next()
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), duration)
			defer cancel()
			c.SetUserContext(ctx)

			return c.Next()
		},
	}
}
