package jwt

import "errors"

var (
	ErrInvalidToken         = errors.New("jwt: invalid token")
	ErrMissingToken         = errors.New("jwt: missing token")
	ErrExpiredToken         = errors.New("jwt: token is expired")
	ErrMissingSigningKey    = errors.New("jwt: missing signing key")
	ErrInvalidClaims        = errors.New("jwt: invalid claims")
	ErrMissingClaims        = errors.New("jwt: missing claims")
	ErrInvalidSignature     = errors.New("jwt: invalid signature")
)
