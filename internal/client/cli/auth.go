package cli

import (
	"context"
	"crypto/subtle"

	"github.com/dmitrijs2005/securedrive/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register asks for an email and a password twice and creates the account.
// It does not log in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if subtle.ConstantTimeCompare(password, confirm) != 1 {
		return errPasswordMismatch
	}

	if err := a.authService.Register(ctx, email, password); err != nil {
		return err
	}

	printlnFn(successColor("Registered " + email + ". You can log in now."))
	return nil
}

// Login asks for credentials and replaces any current session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	s, err := a.authService.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.endSession(ctx)
	a.setSession(s)

	printlnFn(successColor("Logged in as " + s.Email()))
	return nil
}

// Logout ends the server session and destroys the local Master Key.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Not logged in")
		return nil
	}
	s := a.currentSession()
	err := a.authService.Logout(ctx, s)
	a.setSession(nil)

	printlnFn(successColor("Logged out"))
	if err != nil {
		a.logger.Debug(ctx, "server logout failed", "error", err)
	}
	return nil
}
