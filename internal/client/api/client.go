package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vkozyrev/apptbook/internal/client/models"
	"github.com/vkozyrev/apptbook/internal/client/tokenstore"
	"github.com/vkozyrev/apptbook/internal/logging"
)

// Client is the remote API surface consumed by the session controller and
// the CLI. Login/Register/Refresh bypass the authenticated pipeline; every
// other method goes through it and transparently survives an expired access
// token.
type Client interface {
	Login(ctx context.Context, login, password string) (*models.Credential, *models.UserProfile, error)
	Register(ctx context.Context, req RegisterRequest) (*models.Credential, *models.UserProfile, error)
	Verify(ctx context.Context) (*models.UserProfile, error)
	RefreshSession(ctx context.Context) error
	Logout(ctx context.Context) error

	User(ctx context.Context) (*models.UserProfile, error)
	UpdateUser(ctx context.Context, req ProfileUpdate) (*models.UserProfile, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	Appointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, appt models.Appointment) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	CancelAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	CompleteAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	Stats(ctx context.Context) (*models.AppointmentStats, error)

	OnSessionTerminated(fn func())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type ProfileUpdate struct {
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type verifyResponse struct {
	Authenticated bool                `json:"authenticated"`
	User          *models.UserProfile `json:"user"`
}

// AppointmentFilter narrows the appointment list. Zero values mean "all".
type AppointmentFilter struct {
	Status models.AppointmentStatus
	Date   string // YYYY-MM-DD
	Search string
}

func (f AppointmentFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// HTTPClient is the Client implementation over an HTTP transport.
type HTTPClient struct {
	transport Transport
	store     tokenstore.Store
	pipeline  *Pipeline
	refresher *Coordinator
	log       logging.Logger
}

func NewHTTPClient(baseURL string, store tokenstore.Store, timeout time.Duration, log logging.Logger) *HTTPClient {
	transport := NewHTTPTransport(baseURL, timeout, log)
	return newClient(transport, store, timeout, log)
}

func newClient(transport Transport, store tokenstore.Store, timeout time.Duration, log logging.Logger) *HTTPClient {
	refresher := NewCoordinator(transport, store, timeout, log)
	return &HTTPClient{
		transport: transport,
		store:     store,
		pipeline:  NewPipeline(transport, store, refresher, log),
		refresher: refresher,
		log:       log,
	}
}

// OnSessionTerminated registers the callback fired once per terminal session
// teardown (failed refresh or 403). Set before issuing requests.
func (c *HTTPClient) OnSessionTerminated(fn func()) {
	c.refresher.OnTerminated(fn)
}

// session posts credentials to an unauthenticated auth endpoint and decodes
// the returned session payload. The caller persists it; the client never
// writes the store on login paths.
func (c *HTTPClient) session(ctx context.Context, path string, body any) (*models.Credential, *models.UserProfile, error) {
	resp, err := c.transport.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		// Invalid credentials and field errors alike: surface the server
		// message verbatim, leave the session alone.
		return nil, nil, resp.validationError()
	}

	var session sessionResponse
	if err := resp.Decode(&session); err != nil {
		return nil, nil, err
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		return nil, nil, fmt.Errorf("auth response missing tokens")
	}

	cred := &models.Credential{AccessToken: session.AccessToken, RefreshToken: session.RefreshToken}
	user := session.User
	return cred, &user, nil
}

func (c *HTTPClient) Login(ctx context.Context, login, password string) (*models.Credential, *models.UserProfile, error) {
	return c.session(ctx, "/auth/login", loginRequest{Email: login, Password: password})
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*models.Credential, *models.UserProfile, error) {
	return c.session(ctx, "/auth/register", req)
}

// Verify checks the current access token. ErrUnauthenticated means the
// server did not recognize the session and the pipeline could not rescue it,
// or the token verified as stale; the caller decides whether to refresh.
func (c *HTTPClient) Verify(ctx context.Context) (*models.UserProfile, error) {
	resp, err := c.pipeline.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/verify"})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify endpoint returned %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if !body.Authenticated || body.User == nil {
		return nil, fmt.Errorf("%w: session not verified", ErrUnauthenticated)
	}
	return body.User, nil
}

// RefreshSession forces one refresh-token exchange via the coordinator.
func (c *HTTPClient) RefreshSession(ctx context.Context) error {
	return c.refresher.Refresh(ctx)
}

// Logout invalidates the server-side session. Callers treat failures as
// best-effort; local teardown never depends on this call.
func (c *HTTPClient) Logout(ctx context.Context) error {
	// Cancel any in-flight refresh first: requests queued behind it must
	// fail instead of replaying with a token that is about to be cleared.
	c.refresher.CancelPending()

	resp, err := c.transport.Do(ctx, c.authorized(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// authorized attaches the current access token without engaging the refresh
// pipeline. Only logout uses it: a 401 there is irrelevant.
func (c *HTTPClient) authorized(ctx context.Context, req Request) Request {
	cred, err := c.store.Credential(ctx)
	if err == nil && cred != nil {
		req.BearerToken = cred.AccessToken
	}
	return req
}

func (c *HTTPClient) User(ctx context.Context) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	if err := c.get(ctx, "/auth/user", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, req ProfileUpdate) (*models.UserProfile, error) {
	user := &models.UserProfile{}
	if err := c.do(ctx, http.MethodPut, "/auth/user", req, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/change-password", body, nil)
}

func (c *HTTPClient) Appointments(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := c.get(ctx, "/appointments", filter.query(), &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

func (c *HTTPClient) CreateAppointment(ctx context.Context, appt models.Appointment) (*models.Appointment, error) {
	created := &models.Appointment{}
	if err := c.do(ctx, http.MethodPost, "/appointments", appt, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *HTTPClient) UpdateAppointment(ctx context.Context, id int64, appt models.Appointment) (*models.Appointment, error) {
	updated := &models.Appointment{}
	if err := c.do(ctx, http.MethodPut, apptPath(id), appt, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (c *HTTPClient) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, apptPath(id), nil, nil)
}

func (c *HTTPClient) CancelAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appt := &models.Appointment{}
	if err := c.do(ctx, http.MethodPost, apptPath(id)+"/cancel", nil, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (c *HTTPClient) CompleteAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	appt := &models.Appointment{}
	if err := c.do(ctx, http.MethodPost, apptPath(id)+"/complete", nil, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (c *HTTPClient) Stats(ctx context.Context) (*models.AppointmentStats, error) {
	stats := &models.AppointmentStats{}
	if err := c.get(ctx, "/appointments/stats", nil, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func apptPath(id int64) string {
	return "/appointments/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.request(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	return c.request(ctx, Request{Method: method, Path: path, Body: body}, out)
}

// request runs an authenticated call through the pipeline and maps non-2xx
// statuses to the error taxonomy.
func (c *HTTPClient) request(ctx context.Context, req Request, out any) error {
	resp, err := c.pipeline.Do(ctx, req)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if out == nil {
			return nil
		}
		return resp.Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return resp.validationError()
	default:
		return fmt.Errorf("unexpected status %d for %s %s", resp.StatusCode, req.Method, req.Path)
	}
}
