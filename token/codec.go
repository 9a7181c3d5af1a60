package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type defines a public type used by authcore APIs.
//
// Type instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Type string

const (
	// TypeAccess is an exported constant or variable used by the token codec.
	TypeAccess Type = "access"
	// TypeRefresh is an exported constant or variable used by the token codec.
	TypeRefresh Type = "refresh"
)

var (
	// ErrSignatureInvalid is returned when the token signature does not verify.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired is returned when the token expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrWrongType is returned when the token type claim does not match the expected type.
	ErrWrongType = errors.New("unexpected token type")
	// ErrMalformed is returned when the token cannot be parsed or a claim is invalid.
	ErrMalformed = errors.New("token malformed")
)

const minSecretBytes = 32

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	Issuer string
}

// Codec defines a public type used by authcore APIs.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config
}

// Claims is the fixed claim set carried by every issued token. TokenType
// discriminates access from refresh tokens; ID carries the registry
// token_id for refresh tokens and is empty for access tokens.
type Claims struct {
	TokenType Type `json:"typ"`
	jwt.RegisteredClaims
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.Secret) < minSecretBytes {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", minSecretBytes)
	}

	return &Codec{config: cfg}, nil
}

// Issue describes the issue operation and its observable behavior.
//
// Issue may return an error when input validation, dependency calls, or security checks fail.
// Issue does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) Issue(subject string, tokenType Type, ttl time.Duration, tokenID string) (string, error) {
	if subject == "" {
		return "", errors.New("subject required")
	}
	if tokenType != TypeAccess && tokenType != TypeRefresh {
		return "", errors.New("unsupported token type")
	}
	if ttl <= 0 {
		return "", errors.New("invalid TTL")
	}

	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    c.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Verify describes the verify operation and its observable behavior.
//
// Verify may return an error when input validation, dependency calls, or security checks fail.
// Verify does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) Verify(tokenStr string, expected Type) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	if claims.TokenType != expected {
		return nil, ErrWrongType
	}

	return claims, nil
}
