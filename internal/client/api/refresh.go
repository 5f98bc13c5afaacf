package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vkozyrev/apptbook/internal/client/models"
	"github.com/vkozyrev/apptbook/internal/client/tokenstore"
	"github.com/vkozyrev/apptbook/internal/logging"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         models.UserProfile `json:"user"`
}

// Coordinator owns the refresh-token exchange. It is single-flight: the
// first caller to arrive while idle performs the network call, everyone
// arriving during that flight waits for its outcome. Exactly one refresh
// request is sent per idle-to-refreshing transition.
//
// On success the store holds the new pair before any waiter is released;
// waiters are released in arrival order. On failure the store is cleared,
// all waiters get ErrUnauthenticated, and the terminated callback fires so
// the session controller can drive the UI back to login.
type Coordinator struct {
	transport Transport
	store     tokenstore.Store
	timeout   time.Duration
	log       logging.Logger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
	cancel     context.CancelFunc

	onTerminated func()
}

func NewCoordinator(transport Transport, store tokenstore.Store, timeout time.Duration, log logging.Logger) *Coordinator {
	return &Coordinator{
		transport: transport,
		store:     store,
		timeout:   timeout,
		log:       log,
	}
}

// OnTerminated registers the callback invoked once per terminal session
// teardown. Set before the coordinator is used.
func (c *Coordinator) OnTerminated(fn func()) {
	c.onTerminated = fn
}

// Refresh exchanges the stored refresh token for a new pair. Concurrent
// callers share one network call.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		// A flight is in progress; queue up and wait for its outcome.
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// The flight survives cancellation of the initiating caller: waiters
	// queued behind it must not lose the shared outcome. It is bounded by
	// the coordinator's own timeout and by CancelPending.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	c.refreshing = true
	c.cancel = cancel
	c.mu.Unlock()

	err := c.doRefresh(fctx)
	cancel()

	c.mu.Lock()
	c.refreshing = false
	c.cancel = nil
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
	return err
}

// CancelPending aborts an in-flight refresh, if any. Used by logout: queued
// requests must fail rather than replay with a token that is being cleared.
func (c *Coordinator) CancelPending() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Terminate clears the session and reports the teardown. The pipeline calls
// it on 403; the coordinator itself calls it when a refresh fails. The store
// is written here and in doRefresh only.
func (c *Coordinator) Terminate(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	if c.onTerminated != nil {
		c.onTerminated()
	}
}

func (c *Coordinator) doRefresh(ctx context.Context) error {
	cred, err := c.store.Credential(ctx)
	if err != nil {
		return err
	}
	if cred == nil || cred.RefreshToken == "" {
		return c.fail(ctx, fmt.Errorf("no refresh token"))
	}

	resp, err := c.transport.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   refreshRequest{RefreshToken: cred.RefreshToken},
	})
	if err != nil {
		// A refresh that cannot complete is terminal for the session,
		// including timeouts.
		return c.fail(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		return c.fail(ctx, fmt.Errorf("refresh endpoint returned %d", resp.StatusCode))
	}

	var session sessionResponse
	if err := resp.Decode(&session); err != nil {
		return c.fail(ctx, err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return c.fail(ctx, fmt.Errorf("refresh response missing tokens"))
	}

	newCred := &models.Credential{AccessToken: session.AccessToken, RefreshToken: session.RefreshToken}
	if err := c.store.SetSession(ctx, newCred, &session.User); err != nil {
		return err
	}

	c.log.Info(ctx, "session refreshed")
	return nil
}

func (c *Coordinator) fail(ctx context.Context, cause error) error {
	c.log.Warn(ctx, "session refresh failed", "error", cause)
	// The clear must go through even when the flight was cancelled.
	c.Terminate(context.WithoutCancel(ctx))
	return fmt.Errorf("%w: %v", ErrUnauthenticated, cause)
}
