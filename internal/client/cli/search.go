package cli

import (
	"context"
	"fmt"

	"github.com/pricescout/pricescout/internal/client/services"
)

// Search submits a product query and waits for its outcome. A result that
// arrives after a newer search was submitted is silently dropped by the
// orchestrator; this handler only ever prints the outcome of its own query.
func (a *App) Search(ctx context.Context, query string) error {
	done, err := a.search.Submit(ctx, query)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot search: %v\n", err)
		return err
	}

	fmt.Fprintf(a.out, "Searching for %q...\n", query)

	snap, ok := <-done
	if !ok {
		// Superseded by a newer search.
		return nil
	}

	switch snap.State {
	case services.SearchFailed:
		fmt.Fprintf(a.out, "Search failed: %s\n", snap.Err)
	case services.SearchSucceeded:
		a.printComparison(snap)
	}
	return nil
}

func (a *App) printComparison(snap services.SearchSnapshot) {
	r := snap.Result
	if r.TotalResults == 0 || len(r.Results) == 0 {
		if r.Message != "" {
			fmt.Fprintln(a.out, r.Message)
		} else {
			fmt.Fprintf(a.out, "No offers found for %q.\n", r.Product)
		}
		return
	}

	fmt.Fprintf(a.out, "%s: %d offers", r.Product, r.TotalResults)
	if r.BestPrice != nil {
		fmt.Fprintf(a.out, ", best price %d", *r.BestPrice)
	}
	fmt.Fprintln(a.out)

	for _, e := range r.Results {
		price := e.Price
		if price == "" {
			price = fmt.Sprintf("%d", e.Original)
		}
		fmt.Fprintf(a.out, "  %-12s %10s", e.Platform, price)
		if e.Savings > 0 {
			fmt.Fprintf(a.out, "  (save %d)", e.Savings)
		}
		if e.Link != "" {
			fmt.Fprintf(a.out, "  %s", e.Link)
		}
		fmt.Fprintln(a.out)
	}
}

// Trending prints the public trending-searches list.
func (a *App) Trending(ctx context.Context) error {
	items, err := a.trending.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot load trending searches: %v\n", err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Nothing is trending right now.")
		return nil
	}

	fmt.Fprintln(a.out, "Trending searches:")
	for i, item := range items {
		fmt.Fprintf(a.out, "  %d. %s (%d searches)\n", i+1, item.Name, item.Searches)
	}
	return nil
}
