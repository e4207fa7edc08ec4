package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/pricescout/pricescout/internal/common"
)

// getSimpleText, getSecret and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret
var getConfirmation = GetConfirmation

// Login prompts for a Google ID credential and signs the user in.
//
// The credential is inspected locally first: a structurally broken or expired
// credential is rejected before any network call. On success the session is
// persisted and survives restarts.
func (a *App) Login(ctx context.Context) error {
	credential, err := getSecret("Paste Google credential", a.out)
	if err != nil {
		return err
	}

	preview, err := a.auth.Preview(credential)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			fmt.Fprintf(a.out, "That credential cannot be used: %v\n", err)
			return err
		}
		return err
	}
	if preview.Name != "" {
		fmt.Fprintf(a.out, "Signing in as %s...\n", preview.Name)
	}

	user, err := a.auth.Login(ctx, credential)
	if err != nil {
		fmt.Fprintf(a.out, "Sign-in failed: %v\n", err)
		return err
	}

	a.userName = user.Name
	fmt.Fprintf(a.out, "Welcome, %s!\n", user.Name)
	return nil
}

// Logout drops the session locally. In-flight requests started before the
// logout are discarded when they complete.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintf(a.out, "Sign-out failed: %v\n", err)
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// Ping reports backend liveness and flips the connectivity mode.
func (a *App) Ping(ctx context.Context) error {
	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		fmt.Fprintf(a.out, "Backend unreachable: %v\n", err)
		return err
	}
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, "Backend is up.")
	return nil
}
