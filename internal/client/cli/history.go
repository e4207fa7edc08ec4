package cli

import (
	"context"
	"fmt"
)

// History prints the search history, newest first as served by the backend.
// When the backend is unreachable the locally cached copy is shown.
func (a *App) History(ctx context.Context) error {
	entries, err := a.history.Load(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load history: %v\n", err)
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No searches yet.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(a.out, "  [%s] %s - %d results (%s)\n", e.ID, e.Product, e.ResultsCount, e.Timestamp)
	}
	return nil
}

// DeleteHistory removes one entry. The entry disappears from the list right
// away; if the backend rejects the delete it comes back and the error is shown.
func (a *App) DeleteHistory(ctx context.Context, id string) error {
	if err := a.history.Delete(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Delete failed, entry restored: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

// ClearHistory deletes the whole search history after a confirmation prompt.
func (a *App) ClearHistory(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "This removes your entire search history. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Kept.")
		return nil
	}

	if err := a.history.ClearAll(ctx); err != nil {
		fmt.Fprintf(a.out, "Clear failed, history kept: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "History cleared.")
	return nil
}
