package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/vkozyrev/apptbook/internal/client/api"
	"github.com/vkozyrev/apptbook/internal/client/validate"
	"github.com/vkozyrev/apptbook/internal/common"
)

// WhoAmI prints the current profile and the access-token expiry hint.
func (a *App) WhoAmI(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in.")
		return nil
	}

	printlnFn(fmt.Sprintf("%s <%s> (@%s)", user.DisplayName(), user.Email, user.Username))
	if user.Phone != "" {
		printlnFn("Phone: " + user.Phone)
	}
	if !user.LastLogin.IsZero() {
		printlnFn("Last login: " + user.LastLogin.Format("2006-01-02 15:04"))
	}

	cred, err := a.store.Credential(ctx)
	if err == nil && cred != nil {
		if exp, ok := cred.ExpiresAt(); ok {
			printlnFn("Access token expires: " + exp.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// Profile prompts for updated profile fields and saves them. Blank input
// keeps the current value. The credential pair is untouched.
func (a *App) Profile(ctx context.Context) error {
	user := a.session.CurrentUser()
	if user == nil {
		printlnFn("Not logged in.")
		return nil
	}

	username, err := getSimpleText(a.reader, fmt.Sprintf("Username [%s]", user.Username), os.Stdout)
	if err != nil {
		return err
	}
	if username == "" {
		username = user.Username
	}
	fullName, err := getSimpleText(a.reader, fmt.Sprintf("Full name [%s]", user.FullName), os.Stdout)
	if err != nil {
		return err
	}
	if fullName == "" {
		fullName = user.FullName
	}
	phone, err := getSimpleText(a.reader, fmt.Sprintf("Phone [%s]", user.Phone), os.Stdout)
	if err != nil {
		return err
	}
	if phone == "" {
		phone = user.Phone
	}

	form := validate.ProfileForm{Username: username, FullName: fullName, Phone: phone}
	if fields := validate.Struct(form); fields != nil {
		reportFields(fields)
		return nil
	}

	updated, err := a.session.UpdateProfile(ctx, api.ProfileUpdate{
		Username: form.Username,
		FullName: form.FullName,
		Phone:    form.Phone,
	})
	if err != nil {
		reportErr(err)
		return err
	}

	printlnFn("Profile updated for @" + updated.Username)
	return nil
}

// Passwd rotates the password. The current session stays valid; no re-login
// is required.
func (a *App) Passwd(ctx context.Context) error {
	oldPassword, err := getPassword(os.Stdout, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword(os.Stdout, "New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword(os.Stdout, "Repeat new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form := validate.PasswordChangeForm{
		OldPassword: string(oldPassword),
		NewPassword: string(newPassword),
		Confirm:     string(confirm),
	}
	if fields := validate.Struct(form); fields != nil {
		reportFields(fields)
		return nil
	}

	if err := a.session.ChangePassword(ctx, form.OldPassword, form.NewPassword); err != nil {
		reportErr(err)
		return err
	}

	printlnFn("Password changed.")
	return nil
}
