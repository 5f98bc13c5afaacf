package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vkozyrev/apptbook/internal/client/tokenstore"
	"github.com/vkozyrev/apptbook/internal/logging"
)

// Pipeline wraps the transport for authenticated calls: it attaches the
// current access token, routes 401 responses through the refresh
// coordinator, and replays the original request exactly once with the new
// token. A logical request is sent at most twice.
type Pipeline struct {
	transport Transport
	store     tokenstore.Store
	refresher *Coordinator
	log       logging.Logger
}

func NewPipeline(transport Transport, store tokenstore.Store, refresher *Coordinator, log logging.Logger) *Pipeline {
	return &Pipeline{
		transport: transport,
		store:     store,
		refresher: refresher,
		log:       log,
	}
}

// authExempt reports whether a 401 from this path must never trigger a
// refresh: retrying the refresh or login endpoint would loop.
func authExempt(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/auth/refresh":
		return true
	}
	return false
}

func (p *Pipeline) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.send(ctx, req)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		if authExempt(req.Path) {
			return resp, nil
		}
		if err := p.refresher.Refresh(ctx); err != nil {
			return nil, err
		}
		return p.replay(ctx, req)

	case http.StatusForbidden:
		// The credential is valid but rejected: revoked session or
		// insufficient rights. Terminal either way, no refresh.
		return nil, p.forbidden(ctx)
	}

	return resp, nil
}

// send issues the request with the current access token attached, if any.
// The descriptor is copied by value; nothing shared is mutated.
func (p *Pipeline) send(ctx context.Context, req Request) (*Response, error) {
	cred, err := p.store.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		req.BearerToken = cred.AccessToken
	}
	return p.transport.Do(ctx, req)
}

// replay re-sends the original request once after a successful refresh.
// A second 401 means the fresh token was rejected too; give up.
func (p *Pipeline) replay(ctx context.Context, req Request) (*Response, error) {
	resp, err := p.send(ctx, req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: request rejected after refresh", ErrUnauthenticated)
	case http.StatusForbidden:
		return nil, p.forbidden(ctx)
	}
	return resp, nil
}

func (p *Pipeline) forbidden(ctx context.Context) error {
	p.refresher.Terminate(context.WithoutCancel(ctx))
	return ErrForbidden
}
