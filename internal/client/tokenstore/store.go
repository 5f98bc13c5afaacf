// Package tokenstore persists the client session: the access/refresh token
// pair and the cached user profile. It is an opaque blob store; token
// contents are never inspected here.
package tokenstore

import (
	"context"

	"github.com/vkozyrev/apptbook/internal/client/models"
)

// Store is the durable session holder.
//
// Contract:
//   - Credential/User return (nil, nil) when the value is absent.
//   - SetSession writes credential and profile atomically: a reader never
//     observes one without the other.
//   - SetUser replaces only the cached profile; the credential is untouched.
//   - Clear removes credential and profile together.
type Store interface {
	Credential(ctx context.Context) (*models.Credential, error)
	User(ctx context.Context) (*models.UserProfile, error)
	SetSession(ctx context.Context, cred *models.Credential, user *models.UserProfile) error
	SetUser(ctx context.Context, user *models.UserProfile) error
	Clear(ctx context.Context) error
}
