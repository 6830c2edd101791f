package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/meta"
)

// NewMetaInjectMW creates a middleware that injects request metadata into the request context.
//
// Client address, user agent and service identity are stored with the meta
// package so that loggers and use cases can read them. The caller identity is
// added later by the auth middleware.
func NewMetaInjectMW(serviceName, serviceVersion string) server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			metaData := map[meta.ContextKey]string{
				meta.IPAddress:      c.IP(),
				meta.UserAgent:      c.Get(fiber.HeaderUserAgent),
				meta.ServiceName:    serviceName,
				meta.ServiceVersion: serviceVersion,
			}

			c.SetUserContext(meta.InjectMetaToContext(c.UserContext(), metaData))

			return c.Next()
		},
	}
}
