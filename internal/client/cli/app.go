package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/capture"
	"github.com/pricescout/pricescout/internal/client/config"
	"github.com/pricescout/pricescout/internal/client/services"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/client/storage"
	"github.com/pricescout/pricescout/internal/filex"
	"github.com/pricescout/pricescout/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	log      logging.Logger
	sessions *session.Store
	auth     services.AuthService
	search   *services.SearchOrchestrator
	trending *services.TrendingService
	history  *services.HistoryService
	profile  *services.ProfileService
	scan     *capture.Pipeline
	userName string
	Mode     Mode
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(cfg *config.Config, device capture.Device) (*App, error) {
	ctx := context.Background()
	log := logging.NewDefault(os.Stderr, slog.LevelWarn)

	dir, err := filex.EnsureDir(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("preparing state dir: %w", err)
	}

	repos, err := storage.InitDatabase(ctx, filepath.Join(dir, "pricescout.db"))
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	sessions := session.NewStore(repos.DB, log)
	apiClient := api.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, sessions)

	return &App{
		config:   cfg,
		log:      log,
		sessions: sessions,
		auth:     services.NewAuthService(apiClient, sessions, log),
		search:   services.NewSearchOrchestrator(apiClient, sessions, log),
		trending: services.NewTrendingService(apiClient, cfg.TrendingCacheTTL, log),
		history:  services.NewHistoryService(apiClient, sessions, repos.History, log),
		profile:  services.NewProfileService(apiClient, sessions, log),
		scan:     capture.NewPipeline(apiClient, device, log),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.IsAuthenticated()
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run restores the saved session, starts the connectivity watcher, and
// blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.auth.Close(ctx)
	defer a.scan.Close(ctx)

	if user, err := a.auth.Restore(ctx); err == nil && user != nil {
		a.userName = user.Name
		fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Name)
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "pricescout CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// StartOnlineStatusWatcher pings the backend on the given interval and flips
// Mode between online and offline accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.auth.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
