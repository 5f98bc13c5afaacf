package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the access/refresh token pair issued by the server.
// The access token is attached to every authenticated request; the refresh
// token is sent only to the refresh endpoint.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ExpiresAt reads the exp claim of the access token without verifying the
// signature (the client does not hold the signing key). The value is a
// status hint only; authorization is decided by the server via 401.
func (c *Credential) ExpiresAt() (time.Time, bool) {
	if c == nil || c.AccessToken == "" {
		return time.Time{}, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
