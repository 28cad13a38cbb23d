// Package auth implements the bearer-token authentication the admin
// API requires for every route except /health.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidTokenType is returned by ValidateToken when a parsed token
// is not valid.
var ErrInvalidTokenType = errors.New("auth: invalid token type")

// Claims is the JWT payload for an admin-API bearer token.
type Claims struct {
	jwt.RegisteredClaims

	// Subject is the operator identity the token was issued to.
	Subject string `json:"sub"`
}

// JWTConfig configures the token service.
type JWTConfig struct {
	Secret        string
	Issuer        string
	TokenDuration time.Duration
}

// JWTService issues and validates admin-API bearer tokens.
type JWTService struct {
	secret   []byte
	issuer   string
	duration time.Duration
}

// NewJWTService validates config and returns a JWTService. The secret
// must be at least 32 bytes, matching the minimum the teacher's own
// control-plane API enforces.
func NewJWTService(cfg JWTConfig) (*JWTService, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("auth: JWT secret must be at least 32 characters")
	}
	duration := cfg.TokenDuration
	if duration == 0 {
		duration = time.Hour
	}
	return &JWTService{secret: []byte(cfg.Secret), issuer: cfg.Issuer, duration: duration}, nil
}

// IssueToken returns a signed bearer token for subject.
func (s *JWTService) IssueToken(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
		},
		Subject: subject,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies tokenStr, returning its claims.
func (s *JWTService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	if !token.Valid {
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
