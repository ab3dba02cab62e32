package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identify the caller of a realtime endpoint. The subject carries the
// user id; the tenant is a private claim.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c Claims) UserID() string { return c.Subject }

// NewClaims builds claims for a user of a tenant that expire after ttl.
// A zero ttl produces a token without expiry.
func NewClaims(tenantID, userID string, ttl time.Duration) Claims {
	now := time.Now()
	c := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return c
}

// Service signs and verifies HS256 tokens.
type Service struct {
	signingKey []byte
	issuer     string
	parser     *jwt.Parser
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIssuer sets the issuer written on generated tokens and required on
// parsed ones.
func WithIssuer(iss string) ServiceOption {
	return func(s *Service) { s.issuer = iss }
}

// New creates a service with the provided signing key.
func New(signingKey []byte, opts ...ServiceOption) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	s := &Service{signingKey: signingKey}
	for _, opt := range opts {
		opt(s)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}
	s.parser = jwt.NewParser(parserOpts...)
	return s, nil
}

// NewFromConfig creates a service from environment configuration.
func NewFromConfig(cfg Config) (*Service, error) {
	var opts []ServiceOption
	if cfg.Issuer != "" {
		opts = append(opts, WithIssuer(cfg.Issuer))
	}
	return New([]byte(cfg.SigningKey), opts...)
}

// Generate signs the claims.
func (s *Service) Generate(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", ErrMissingClaims
	}
	if s.issuer != "" && claims.Issuer == "" {
		claims.Issuer = s.issuer
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the token and returns its claims. Both the subject and the
// tenant claim are required.
func (s *Service) Parse(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrMissingToken
	}

	var claims Claims
	token, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, errors.Join(ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Claims{}, errors.Join(ErrInvalidSignature, err)
	case err != nil:
		return Claims{}, errors.Join(ErrInvalidToken, err)
	case !token.Valid:
		return Claims{}, ErrInvalidToken
	}

	if claims.Subject == "" || claims.TenantID == "" {
		return Claims{}, ErrInvalidClaims
	}
	return claims, nil
}
