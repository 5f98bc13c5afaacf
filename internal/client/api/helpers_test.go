package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/vkozyrev/apptbook/internal/client/models"
	"github.com/vkozyrev/apptbook/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memStore is an in-memory tokenstore.Store so coordinator and pipeline
// tests do not need a database.
type memStore struct {
	mu         sync.Mutex
	cred       *models.Credential
	user       *models.UserProfile
	clearCalls int
}

func (s *memStore) Credential(context.Context) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred, nil
}

func (s *memStore) User(context.Context) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

func (s *memStore) SetSession(_ context.Context, cred *models.Credential, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.user = cred, user
	return nil
}

func (s *memStore) SetUser(_ context.Context, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred, s.user = nil, nil
	s.clearCalls++
	return nil
}

func (s *memStore) credential() *models.Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred
}

func (s *memStore) clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearCalls
}

// fakeTransport routes every call through doFn and records the requests it
// has seen.
type fakeTransport struct {
	mu       sync.Mutex
	requests []Request
	doFn     func(ctx context.Context, req Request) (*Response, error)
}

func (t *fakeTransport) Do(ctx context.Context, req Request) (*Response, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	t.mu.Unlock()
	return t.doFn(ctx, req)
}

func (t *fakeTransport) sent(path string) []Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Request
	for _, r := range t.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func jsonResponse(t *testing.T, code int, v any) *Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return &Response{StatusCode: code, Body: data}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached: %s", msg)
}
