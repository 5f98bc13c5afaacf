package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vkozyrev/apptbook/internal/client/models"
	"github.com/vkozyrev/apptbook/internal/dbx"
)

// Storage keys. Three opaque entries, matching the wire contract: two token
// strings and one JSON-encoded profile.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) get(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM session WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) set(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set session[%s]: %w", key, err)
	}
	return nil
}

// Credential returns the stored token pair, or nil if either half is absent.
func (s *SQLiteStore) Credential(ctx context.Context) (*models.Credential, error) {
	access, err := s.get(ctx, s.db, keyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.get(ctx, s.db, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	if len(access) == 0 || len(refresh) == 0 {
		return nil, nil
	}
	return &models.Credential{AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

// User returns the cached profile, or nil if absent.
func (s *SQLiteStore) User(ctx context.Context) (*models.UserProfile, error) {
	data, err := s.get(ctx, s.db, keyUser)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	user := &models.UserProfile{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, fmt.Errorf("failed to decode cached user: %w", err)
	}
	return user, nil
}

// SetSession writes the credential pair and the profile in one transaction.
func (s *SQLiteStore) SetSession(ctx context.Context, cred *models.Credential, user *models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.set(ctx, tx, keyAccessToken, []byte(cred.AccessToken)); err != nil {
			return err
		}
		if err := s.set(ctx, tx, keyRefreshToken, []byte(cred.RefreshToken)); err != nil {
			return err
		}
		return s.set(ctx, tx, keyUser, data)
	})
}

// SetUser replaces only the cached profile.
func (s *SQLiteStore) SetUser(ctx context.Context, user *models.UserProfile) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.set(ctx, s.db, keyUser, data)
}

// Clear removes the credential and the profile as a single unit.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM session`)
		if err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	})
}
