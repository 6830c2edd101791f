package token

import (
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretKeySize = 16

// Maker mints HS256 access tokens.
type Maker struct {
	secretKey string
	issuer    string
}

// NewMaker creates a new Maker.
func NewMaker(secretKey, issuer string) (*Maker, error) {
	if len(secretKey) < minSecretKeySize {
		return nil, errx.New(fmt.Sprintf("invalid key size: must be at least %d characters", minSecretKeySize))
	}
	return &Maker{secretKey: secretKey, issuer: issuer}, nil
}

// CreateToken signs a token for sub valid for duration.
func (m *Maker) CreateToken(sub, username string, duration time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
		PreferredUsername: username,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secretKey))
	if err != nil {
		return "", nil, errx.Wrap(err)
	}

	return token, claims, nil
}
