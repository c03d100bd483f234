package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
// Malformed, mis-signed, and wrong-algorithm tokens are indistinguishable to
// callers so the codec cannot be used as a verification oracle.
var ErrInvalidToken = errors.New("invalid token")

type linkClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens binding a redirect key to its issuance.
// It is stateless; the secret is fixed at construction and rotating it
// invalidates every previously issued token.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec for the given shared secret.
func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token codec requires a non-empty secret")
	}

	return &Codec{secret: []byte(secret)}, nil
}

// Sign produces a token bound to key. Tokens carry no expiry; they remain
// valid until the secret rotates or the record is deleted.
func (c *Codec) Sign(key string) (string, error) {
	claims := linkClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks the token signature and returns the bound key.
// It fails closed: any parse, signature, or claims error yields
// ErrInvalidToken and never a partial payload.
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&linkClaims{},
		func(_ *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*linkClaims)
	if !ok || claims.Key == "" {
		return "", ErrInvalidToken
	}

	return claims.Key, nil
}
