package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/vkozyrev/apptbook/internal/client/api"
	"github.com/vkozyrev/apptbook/internal/client/config"
	"github.com/vkozyrev/apptbook/internal/client/session"
	"github.com/vkozyrev/apptbook/internal/client/tokenstore"
	"github.com/vkozyrev/apptbook/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	session *session.Controller
	client  api.Client
	store   tokenstore.Store
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	store, err := tokenstore.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.ServerBaseURL, store, c.RequestTimeout, log)
	controller := session.NewController(apiClient, store, log)

	app := &App{
		config:  c,
		session: controller,
		client:  apiClient,
		store:   store,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}

	// The networking core never navigates; it only flips the session state.
	// The REPL reacts here.
	controller.Subscribe(app.onSessionChange)

	return app, nil
}

func (a *App) onSessionChange(state session.State) {
	if state == session.StateUnauthenticated {
		printlnFn("Session ended. Use 'login' to sign in again.")
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

// Run restores the session from disk and starts the REPL. It blocks until
// the user exits.
func (a *App) Run(ctx context.Context) {
	if err := a.session.CheckSession(ctx); err != nil {
		a.log.Warn(ctx, "session check failed", "error", err)
		printlnFn("Could not reach the server; commands may fail until it is back.")
	}

	if user := a.session.CurrentUser(); user != nil {
		printlnFn("Welcome back, " + user.DisplayName() + "!")
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
