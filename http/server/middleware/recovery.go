package middleware

import (
	"runtime/debug"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/observability/logger"
)

// CodePanic marks errors produced from a recovered panic.
const CodePanic = "PANIC"

// NewRecoveryMW converts a panic anywhere below it into an internal error, so
// the request still gets a 500 body and the server keeps running.
func NewRecoveryMW(log logger.Logger) server.Middleware {
	log = log.Named("middleware.recovery")
	return server.Middleware{
		Priority: 1000,
		Handler: func(c *fiber.Ctx) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				stack := string(debug.Stack())

				log.WithContext(c.UserContext()).
					With("panic_message", r).
					With("stack_trace", stack).
					Errorf("recovered from panic in %s %s", c.Method(), c.Path())

				err = errx.New("panic recovered",
					errx.WithCode(CodePanic),
					errx.WithType(errx.T_Internal),
					errx.WithDetails(errx.D{"panic_message": r, "stack_trace": stack}),
				)
			}()

			return c.Next()
		},
	}
}
