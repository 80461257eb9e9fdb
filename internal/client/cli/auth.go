package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sundaram/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errCancelled = errors.New("cancelled")

func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// newPassword reads a password twice, validates it and returns it. The
// caller wipes the result.
func (a *App) newPassword(prompt string) ([]byte, error) {
	password, err := getPassword(prompt, a.out)
	if err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		common.WipeByteArray(password)
		return nil, err
	}

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		common.WipeByteArray(password)
		return nil, ErrPasswordMismatch
	}
	return password, nil
}

// Register validates login, email and password locally, creates the account
// and starts its session.
func (a *App) Register(ctx context.Context, args []string) error {
	login, err := a.argOrPrompt(args, 0, "Login")
	if err != nil {
		return err
	}
	if err := ValidateLogin(login); err != nil {
		return err
	}

	email, err := a.argOrPrompt(args, 1, "Email")
	if err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}

	password, err := a.newPassword("Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.authService.Register(ctx, login, email, password); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s registered and logged in\n", login)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	login, err := a.argOrPrompt(args, 0, "Login")
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.authService.Login(ctx, login, password); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", login)
	return nil
}

// Logout forgets the session locally. The server keeps it until the next
// login or password change.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) ChangePassword(ctx context.Context, _ []string) error {
	ok, err := Confirm(a.reader, "Change the password?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	oldPassword, err := getPassword("Old password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := a.newPassword("New password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.authService.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password changed, session renewed")
	return nil
}
