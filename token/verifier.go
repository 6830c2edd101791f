// Package token verifies bearer access tokens issued by the identity provider
// and mints HS256 tokens for local use.
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CodeExpiredToken = "EXPIRED_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeMissingToken = "MISSING_TOKEN"

	CodeInvalidConfig = "INVALID_TOKEN_CONFIG"
)

// Verifier checks signatures and registered claims of access tokens.
type Verifier struct {
	publicKey *rsa.PublicKey
	secret    []byte
	parser    *jwt.Parser
}

// NewVerifier creates a Verifier from cfg.
func NewVerifier(cfg Config) (*Verifier, error) {
	v := &Verifier{}
	methods := make([]string, 0, 2) //nolint:mnd // RS256 and HS256

	if cfg.PublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(toPEM(cfg.PublicKey)))
		if err != nil {
			return nil, errx.Wrap(err, errx.WithCode(CodeInvalidConfig))
		}
		v.publicKey = key
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}

	if cfg.HMACSecret != "" {
		if len(cfg.HMACSecret) < minSecretKeySize {
			return nil, errx.New(
				fmt.Sprintf("invalid key size: must be at least %d characters", minSecretKeySize),
				errx.WithCode(CodeInvalidConfig),
			)
		}
		v.secret = []byte(cfg.HMACSecret)
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}

	if len(methods) == 0 {
		return nil, errx.New("either public_key or hmac_secret must be set", errx.WithCode(CodeInvalidConfig))
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	v.parser = jwt.NewParser(opts...)

	return v, nil
}

// Verify parses token and returns its claims. Failures are T_Authentication errors.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errx.New("token is expired", errx.WithCode(CodeExpiredToken), errx.WithType(errx.T_Authentication))
		}
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidToken), errx.WithType(errx.T_Authentication))
	}

	if claims.Subject == "" {
		return nil, errx.New("token has no subject", errx.WithCode(CodeInvalidToken), errx.WithType(errx.T_Authentication))
	}

	return claims, nil
}

func (v *Verifier) keyFunc(t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodRSA:
		if v.publicKey != nil {
			return v.publicKey, nil
		}
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	}
	return nil, errx.New("unexpected signing method", errx.WithCode(CodeInvalidToken))
}

// toPEM wraps a bare base64 key, as identity providers usually publish it, in PEM armor.
func toPEM(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "-----BEGIN") {
		return key
	}
	return "-----BEGIN PUBLIC KEY-----\n" + key + "\n-----END PUBLIC KEY-----\n"
}
