package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/common"
	"github.com/pricescout/pricescout/internal/logging"
)

// SearchState is the phase of the single search workflow.
type SearchState int

const (
	SearchIdle SearchState = iota
	SearchPending
	SearchSucceeded
	SearchFailed
)

func (s SearchState) String() string {
	switch s {
	case SearchIdle:
		return "idle"
	case SearchPending:
		return "pending"
	case SearchSucceeded:
		return "succeeded"
	case SearchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SearchSnapshot is an immutable view of the orchestrator state. On failure
// Result is nil: an error wipes the previously displayed comparison, matching
// the product's observed behavior.
type SearchSnapshot struct {
	State  SearchState
	Query  string
	Seq    uint64
	Result *models.ComparisonResult
	Err    string
}

// SearchOrchestrator drives the text-search workflow. Only the most recent
// submission may reach terminal state: every outgoing request carries a
// sequence number and a session epoch, and completions whose tags are no
// longer current are discarded.
type SearchOrchestrator struct {
	client   api.Client
	sessions *session.Store
	log      logging.Logger

	mu    sync.Mutex
	seq   uint64
	state SearchSnapshot
}

func NewSearchOrchestrator(client api.Client, sessions *session.Store, log logging.Logger) *SearchOrchestrator {
	return &SearchOrchestrator{client: client, sessions: sessions, log: log}
}

// Submit starts a search for query. It fails immediately with
// common.ErrValidation when the query trims to empty; no request is issued
// and the current state is untouched.
//
// The returned channel delivers the terminal snapshot of THIS submission and
// is then closed. When a newer Submit supersedes this one before it settles,
// the channel is closed without a value.
func (o *SearchOrchestrator) Submit(ctx context.Context, query string) (<-chan SearchSnapshot, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: query is empty", common.ErrValidation)
	}

	o.mu.Lock()
	o.seq++
	seq := o.seq
	epoch := o.sessions.Epoch()
	o.state = SearchSnapshot{State: SearchPending, Query: q, Seq: seq}
	o.mu.Unlock()

	ch := make(chan SearchSnapshot, 1)
	go func() {
		defer close(ch)

		result, err := o.client.Search(ctx, q)

		unauthenticated := err != nil && errors.Is(err, api.ErrUnauthenticated)

		o.mu.Lock()
		superseded := seq != o.seq
		if superseded || epoch != o.sessions.Epoch() {
			if !superseded {
				// The session ended while this request was in flight; the
				// result is discarded and the workflow returns to idle.
				o.state = SearchSnapshot{State: SearchIdle}
			}
			o.mu.Unlock()
			o.log.Debug(ctx, "discarding stale search completion", "query", q, "seq", seq)
			return
		}
		if err != nil {
			o.state = SearchSnapshot{State: SearchFailed, Query: q, Seq: seq, Err: userMessage(err)}
		} else {
			o.state = SearchSnapshot{State: SearchSucceeded, Query: q, Seq: seq, Result: result}
		}
		snap := o.state
		o.mu.Unlock()

		if unauthenticated {
			logoutOnUnauthenticated(ctx, o.sessions, err)
		}
		ch <- snap
	}()

	return ch, nil
}

// Snapshot returns the current orchestrator state.
func (o *SearchOrchestrator) Snapshot() SearchSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
