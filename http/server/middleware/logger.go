package middleware

import (
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/observability/logger"
)

// NewLoggerMW creates a middleware that logs HTTP requests and responses.
//
// Each request is logged once with method, route, status code, duration and
// caller. The level is determined by the status code: info for 2xx/3xx, warn
// for 4xx and error for 5xx.
func NewLoggerMW(log logger.Logger) server.Middleware {
	return server.Middleware{
		Priority: 500,
		Handler: func(c *fiber.Ctx) error {
			start := time.Now()

			err := c.Next()

			ctx := c.UserContext()
			statusCode := c.Response().StatusCode()

			l := log.Named("middleware.logger").WithContext(ctx).
				With("http_status_code", statusCode).
				With("http_method", c.Method()).
				With("http_path", c.Path()).
				With("http_route", c.Route().Path).
				With("duration", time.Since(start)).
				With("query_params", c.Queries()).
				With("request_size", c.Request().Header.ContentLength()).
				With("request_actor_id", meta.Find(ctx, meta.ActorID))

			if err != nil {
				e := errx.AsErrorX(err)
				l = l.With("error", map[string]any{
					"code":    e.Code(),
					"message": e.Error(),
					"type":    e.Type().String(),
					"trace":   e.Trace(),
					"fields":  e.Fields(),
					"details": e.Details(),
				})
			}

			switch {
			case statusCode >= fiber.StatusInternalServerError:
				l.Error("request failed")
			case statusCode >= fiber.StatusBadRequest:
				l.Warn("request rejected")
			default:
				l.Info("request processed successfully")
			}

			return err
		},
	}
}
