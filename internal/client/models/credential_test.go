package models

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestCredential_ExpiresAt(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := signedToken(t, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	cred := &Credential{AccessToken: token, RefreshToken: "R1"}
	got, ok := cred.ExpiresAt()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
}

func TestCredential_ExpiresAt_NoClaim(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Subject: "1"})
	cred := &Credential{AccessToken: token}
	_, ok := cred.ExpiresAt()
	assert.False(t, ok)
}

func TestCredential_ExpiresAt_Garbage(t *testing.T) {
	tests := []struct {
		name string
		cred *Credential
	}{
		{name: "nil credential", cred: nil},
		{name: "empty token", cred: &Credential{}},
		{name: "not a jwt", cred: &Credential{AccessToken: "opaque-token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := tt.cred.ExpiresAt()
			assert.False(t, ok)
		})
	}
}

func TestUserProfile_DisplayName(t *testing.T) {
	withName := &UserProfile{Username: "alice", FullName: "Alice A."}
	assert.Equal(t, "Alice A.", withName.DisplayName())

	bare := &UserProfile{Username: "alice"}
	assert.Equal(t, "alice", bare.DisplayName())
}
