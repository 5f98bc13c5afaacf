// Package session owns the authentication lifecycle on the client: login,
// registration, logout, startup verification, and the observable
// authenticated/unauthenticated state the rest of the application reads.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/vkozyrev/apptbook/internal/client/api"
	"github.com/vkozyrev/apptbook/internal/client/models"
	"github.com/vkozyrev/apptbook/internal/client/tokenstore"
	"github.com/vkozyrev/apptbook/internal/logging"
)

// State is the session lifecycle state. Startup begins at StateUnknown until
// CheckSession resolves it.
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Controller orchestrates the session. It is the only writer of the token
// store besides the refresh coordinator, and the only owner of the cached
// current user.
//
// Presentation layers subscribe to state changes instead of the networking
// core forcing navigation: on terminal session failure subscribers are told
// the state flipped to StateUnauthenticated and route the user accordingly.
type Controller struct {
	client api.Client
	store  tokenstore.Store
	log    logging.Logger

	mu    sync.Mutex
	state State
	user  *models.UserProfile
	subs  []func(State)
}

func NewController(client api.Client, store tokenstore.Store, log logging.Logger) *Controller {
	c := &Controller{
		client: client,
		store:  store,
		log:    log,
		state:  StateUnknown,
	}
	client.OnSessionTerminated(c.sessionTerminated)
	return c
}

// Subscribe registers fn to be called on every state transition. Callbacks
// run outside the controller's lock.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns the profile of the authenticated user, or nil.
func (c *Controller) CurrentUser() *models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Controller) setState(state State, user *models.UserProfile) {
	c.mu.Lock()
	if c.state == state && c.user == user {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.user = user
	subs := make([]func(State), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

// sessionTerminated is invoked by the API layer once per terminal teardown
// (failed refresh, 403). The store is already cleared by then.
func (c *Controller) sessionTerminated() {
	c.setState(StateUnauthenticated, nil)
}

// CheckSession resolves the startup state. With no stored credential it goes
// straight to unauthenticated without touching the network. Otherwise the
// credential is verified; an unverified session gets exactly one refresh
// attempt before giving up.
//
// A transport failure leaves the state unresolved (StateUnknown) and is
// returned to the caller; it says nothing about the credential.
func (c *Controller) CheckSession(ctx context.Context) error {
	cred, err := c.store.Credential(ctx)
	if err != nil {
		return err
	}
	if cred == nil {
		c.setState(StateUnauthenticated, nil)
		return nil
	}

	user, err := c.client.Verify(ctx)
	if err == nil {
		// Keep the cached profile in sync with the server copy.
		if err := c.store.SetUser(ctx, user); err != nil {
			c.log.Warn(ctx, "failed to cache user profile", "error", err)
		}
		c.setState(StateAuthenticated, user)
		return nil
	}

	if errors.Is(err, api.ErrForbidden) {
		c.setState(StateUnauthenticated, nil)
		return nil
	}
	if !errors.Is(err, api.ErrUnauthenticated) {
		return err
	}

	// Token not accepted. One refresh attempt; the coordinator clears the
	// store and reports teardown if it fails.
	if err := c.client.RefreshSession(ctx); err != nil {
		c.setState(StateUnauthenticated, nil)
		return nil
	}

	user, err = c.store.User(ctx)
	if err != nil {
		return err
	}
	c.setState(StateAuthenticated, user)
	return nil
}

// Login exchanges credentials for a session. On failure the server message
// is surfaced verbatim and the state stays unauthenticated.
func (c *Controller) Login(ctx context.Context, login, password string) error {
	cred, user, err := c.client.Login(ctx, login, password)
	if err != nil {
		return err
	}

	if err := c.store.SetSession(ctx, cred, user); err != nil {
		return err
	}
	c.log.Info(ctx, "logged in", "username", user.Username)
	c.setState(StateAuthenticated, user)
	return nil
}

// Register creates an account; the server returns a usable session, so
// success behaves like login.
func (c *Controller) Register(ctx context.Context, req api.RegisterRequest) error {
	cred, user, err := c.client.Register(ctx, req)
	if err != nil {
		return err
	}

	if err := c.store.SetSession(ctx, cred, user); err != nil {
		return err
	}
	c.log.Info(ctx, "registered", "username", user.Username)
	c.setState(StateAuthenticated, user)
	return nil
}

// Logout tears the session down. The server call is best-effort: local
// state is cleared and the controller goes unauthenticated regardless of
// network outcome.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.client.Logout(ctx); err != nil {
		c.log.Warn(ctx, "server logout failed", "error", err)
	}

	if err := c.store.Clear(ctx); err != nil {
		c.log.Error(ctx, "failed to clear session", "error", err)
	}
	c.setState(StateUnauthenticated, nil)
}

// UpdateProfile updates profile fields. The credential is untouched.
func (c *Controller) UpdateProfile(ctx context.Context, req api.ProfileUpdate) (*models.UserProfile, error) {
	user, err := c.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetUser(ctx, user); err != nil {
		return nil, err
	}
	c.setState(StateAuthenticated, user)
	return user, nil
}

// ChangePassword rotates the password. The current token pair stays valid;
// the server decides what happens to other sessions.
func (c *Controller) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.client.ChangePassword(ctx, oldPassword, newPassword)
}
