package middleware

import (
	"strings"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/tabletop/http/server"
	"github.com/rise-and-shine/tabletop/meta"
	"github.com/rise-and-shine/tabletop/token"
)

const (
	accessTokenCookie = "access_token"
	bearerPrefix      = "Bearer "
)

// TokenVerifier resolves the claims of a bearer token.
type TokenVerifier interface {
	Verify(token string) (*token.Claims, error)
}

// NewAuthMW creates a middleware that resolves the caller from the
// Authorization bearer header or the access_token cookie.
//
// A request without a token continues anonymously; a request with an invalid
// or expired token is rejected with 401. The caller's subject and username are
// stored in the request context with meta.WithActor.
func NewAuthMW(v TokenVerifier) server.Middleware {
	return server.Middleware{
		Priority: 300,
		Handler: func(c *fiber.Ctx) error {
			raw := bearerToken(c)
			if raw == "" {
				return c.Next()
			}

			claims, err := v.Verify(raw)
			if err != nil {
				return errx.Wrap(err)
			}

			c.SetUserContext(meta.WithActor(c.UserContext(), claims.Subject, claims.Username()))

			return c.Next()
		},
	}
}

// RequireActor rejects requests that carry no verified caller.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, _, ok := meta.Actor(c.UserContext()); !ok {
			return errx.New(
				"authentication required",
				errx.WithCode(token.CodeMissingToken),
				errx.WithType(errx.T_Authentication),
			)
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return c.Cookies(accessTokenCookie)
}
