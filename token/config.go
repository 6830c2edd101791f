package token

import "time"

// Config defines how bearer tokens are verified.
// At least one of PublicKey and HMACSecret must be set.
type Config struct {
	// PublicKey is the identity provider's RS256 realm key, PEM or bare base64.
	PublicKey string `yaml:"public_key"`

	// HMACSecret enables HS256 tokens, used for local development and tests.
	HMACSecret string `yaml:"hmac_secret" mask:"true"`

	// Issuer, when set, must match the token's "iss" claim.
	Issuer string `yaml:"issuer"`

	// Audience, when set, must be one of the token's "aud" values.
	Audience string `yaml:"audience"`

	// Leeway tolerates clock skew on exp, nbf and iat.
	Leeway time.Duration `yaml:"leeway" default:"30s"`
}
