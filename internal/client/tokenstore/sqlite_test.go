package tokenstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkozyrev/apptbook/internal/client/models"

	_ "modernc.org/sqlite"
)

var dbSeq int

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:tokenstore_test_%d?mode=memory&cache=shared", dbSeq)
	store, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	store.db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = store.db.Close() })
	return store
}

func sampleSession() (*models.Credential, *models.UserProfile) {
	cred := &models.Credential{AccessToken: "A1", RefreshToken: "R1"}
	user := &models.UserProfile{ID: 1, Email: "alice@example.org", Username: "alice", FullName: "Alice A."}
	return cred, user
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred)

	user, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestStore_SetSessionRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cred, user := sampleSession()

	require.NoError(t, s.SetSession(ctx, cred, user))

	gotCred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, gotCred)

	gotUser, err := s.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)
}

func TestStore_SetSessionOverwrites(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cred, user := sampleSession()
	require.NoError(t, s.SetSession(ctx, cred, user))

	next := &models.Credential{AccessToken: "A2", RefreshToken: "R2"}
	require.NoError(t, s.SetSession(ctx, next, user))

	got, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestStore_HalfPairIsNoCredential(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.set(ctx, s.db, keyAccessToken, []byte("A1")))

	cred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, cred, "a lone access token is not a usable session")
}

func TestStore_SetUserKeepsCredential(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cred, user := sampleSession()
	require.NoError(t, s.SetSession(ctx, cred, user))

	updated := &models.UserProfile{ID: 1, Email: "alice@example.org", Username: "alice2"}
	require.NoError(t, s.SetUser(ctx, updated))

	gotUser, err := s.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice2", gotUser.Username)

	gotCred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, gotCred)
}

func TestStore_Clear(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	cred, user := sampleSession()
	require.NoError(t, s.SetSession(ctx, cred, user))

	require.NoError(t, s.Clear(ctx))

	gotCred, err := s.Credential(ctx)
	require.NoError(t, err)
	assert.Nil(t, gotCred)

	gotUser, err := s.User(ctx)
	require.NoError(t, err)
	assert.Nil(t, gotUser)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")
	cred, user := sampleSession()

	s1, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s1.SetSession(ctx, cred, user))
	require.NoError(t, s1.db.Close())

	s2, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.db.Close() })

	gotCred, err := s2.Credential(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred, gotCred)

	gotUser, err := s2.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, gotUser)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s := setupStore(t)
	require.NoError(t, RunMigrations(context.Background(), s.db))
}
