package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the SDK can learn from the auth token without the
// service's signing key.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// InspectToken parses token as a JWT without verifying its signature. The
// service is the verifier; the SDK only reads the subject and expiry.
// Opaque (non-JWT) tokens yield an error and are sent as-is by the Client.
func InspectToken(token string) (TokenInfo, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, err
	}
	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// checkToken rejects missing tokens and JWTs that are already expired at now.
func checkToken(token string, now time.Time) error {
	if token == "" {
		return ErrNoToken
	}
	info, err := InspectToken(token)
	if err != nil {
		return nil
	}
	if !info.ExpiresAt.IsZero() && !now.Before(info.ExpiresAt) {
		return ErrTokenExpired
	}
	return nil
}

// SubjectOf returns the token subject, or an error for opaque tokens and
// tokens without a sub claim.
func SubjectOf(token string) (string, error) {
	info, err := InspectToken(token)
	if err != nil {
		return "", err
	}
	if info.Subject == "" {
		return "", errors.New("api: auth token has no subject")
	}
	return info.Subject, nil
}
