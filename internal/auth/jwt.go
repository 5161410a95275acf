package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a relay session token stays valid
const DefaultSessionTTL = 24 * time.Hour

// RoleClient is the role carried by relay session tokens
const RoleClient = "client"

// ErrNoSecret is returned when tokens are requested without a signing secret
var ErrNoSecret = errors.New("session secret is not configured")

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates relay session tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. An empty secret disables token checks.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a secret is configured
func (i *Issuer) Enabled() bool {
	return len(i.secret) > 0
}

// TTL returns the token lifetime
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// GenerateSessionToken issues a token for a client; an empty id gets a fresh one
func (i *Issuer) GenerateSessionToken(clientID string) (string, *JWTClaims, error) {
	if !i.Enabled() {
		return "", nil, ErrNoSecret
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}

	now := i.now()
	claims := &JWTClaims{
		ClientID: clientID,
		Role:     RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// ValidateToken validates a JWT token and returns the claims
func (i *Issuer) ValidateToken(tokenString string) (*JWTClaims, error) {
	if !i.Enabled() {
		return nil, ErrNoSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
