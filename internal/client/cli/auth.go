package cli

import (
	"context"
	"errors"
	"os"

	"github.com/vkozyrev/apptbook/internal/client/api"
	"github.com/vkozyrev/apptbook/internal/client/validate"
	"github.com/vkozyrev/apptbook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// reportErr prints a command failure in a user-appropriate form: validation
// failures show the server message (and field details), transport failures a
// short hint, anything else the raw error.
func reportErr(err error) {
	var verr *api.ValidationError
	switch {
	case errors.As(err, &verr):
		printlnFn("Error:", verr.Error())
	case errors.Is(err, api.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	case errors.Is(err, api.ErrUnauthenticated), errors.Is(err, api.ErrForbidden):
		// The session-change subscriber has already told the user.
	default:
		printlnFn("Error:", err.Error())
	}
}

func reportFields(fields map[string]string) {
	for field, msg := range fields {
		printlnFn("  " + field + ": " + msg)
	}
}

// Login prompts the user for credentials and tries to authenticate.
//
// The login field accepts an email or a username. On success the session
// controller persists the token pair and profile; on rejection the server
// message is shown verbatim. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Enter email or username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := validate.LoginForm{Login: login, Password: string(password)}
	if fields := validate.Struct(form); fields != nil {
		reportFields(fields)
		return nil
	}

	if err := a.session.Login(ctx, form.Login, form.Password); err != nil {
		reportErr(err)
		return err
	}

	printlnFn("Logged in as " + login)
	return nil
}

// Register prompts for the registration form and creates an account. The
// server returns a usable session, so success behaves like login.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name (optional)", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional)", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := validate.RegisterForm{
		Email:    email,
		Username: username,
		Password: string(password),
		FullName: fullName,
		Phone:    phone,
	}
	if fields := validate.Struct(form); fields != nil {
		reportFields(fields)
		return nil
	}

	req := api.RegisterRequest{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
		FullName: form.FullName,
		Phone:    form.Phone,
	}
	if err := a.session.Register(ctx, req); err != nil {
		reportErr(err)
		return err
	}

	printlnFn("Success! Registered as " + username)
	return nil
}

// Logout tears the session down. Teardown is local-first: even when the
// server call fails the local session is gone by the time this returns.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	return nil
}
