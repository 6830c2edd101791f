package token

import "github.com/golang-jwt/jwt/v5"

// Claims are the parts of an access token the service relies on.
type Claims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
}

// Username returns the preferred username, falling back to the subject.
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}
