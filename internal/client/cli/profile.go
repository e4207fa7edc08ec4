package cli

import (
	"context"
	"fmt"
)

// Profile fetches and prints the signed-in user's profile.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.profile.Load(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load profile: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Name:     %s\n", user.Name)
	fmt.Fprintf(a.out, "Email:    %s\n", user.Email)
	fmt.Fprintf(a.out, "Searches: %d\n", user.TotalSearches)
	if user.CreatedAt != "" {
		fmt.Fprintf(a.out, "Member since: %s\n", user.CreatedAt)
	}
	a.userName = user.Name
	return nil
}

// Rename prompts for a new display name and saves it. Only the name is
// client-editable; everything else on the profile belongs to the backend.
func (a *App) Rename(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New display name", a.out)
	if err != nil {
		return err
	}

	user, err := a.profile.Save(ctx, name)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot save name: %v\n", err)
		return err
	}

	a.userName = user.Name
	fmt.Fprintf(a.out, "Saved. Hello, %s!\n", user.Name)
	return nil
}
