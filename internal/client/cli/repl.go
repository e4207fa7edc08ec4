package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Trending(ctx context.Context) error
	Scan(ctx context.Context) error
	ScanFile(ctx context.Context, path string) error
	History(ctx context.Context) error
	DeleteHistory(ctx context.Context, id string) error
	ClearHistory(ctx context.Context) error
	Profile(ctx context.Context) error
	Rename(ctx context.Context) error
	Ping(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the pricescout CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not signed in:
//	  - help             — show available commands
//	  - login            — sign in with a Google credential
//	  - trending         — show trending searches
//	  - ping             — check backend liveness
//	  - exit | quit      — leave the program
//
//	Signed in, additionally:
//	  - search <product> — compare prices for a product
//	  - scan             — photograph a product with the camera
//	  - scanfile <path>  — upload an image file for product detection
//	  - history          — list past searches
//	  - rmhist <id>      — delete one history entry
//	  - clearhist        — delete the whole history
//	  - profile          — show the profile
//	  - rename           — change the display name
//	  - logout           — sign out
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ps> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: search, trending, scan, scanfile, history, rmhist, clearhist, profile, rename, ping, logout, exit")
			} else {
				printlnFn("Available commands: login, trending, ping, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "s", "search":
			if len(args) == 0 {
				printlnFn("Usage: search <product>")
				continue
			}
			_ = a.Search(ctx, strings.Join(args, " "))

		case "trending":
			_ = a.Trending(ctx)

		case "scan":
			_ = a.Scan(ctx)

		case "scanfile":
			if len(args) == 0 {
				printlnFn("Usage: scanfile <path>")
				continue
			}
			_ = a.ScanFile(ctx, args[0])

		case "h", "history":
			_ = a.History(ctx)

		case "rmhist":
			if len(args) == 0 {
				printlnFn("Usage: rmhist <id>")
				continue
			}
			_ = a.DeleteHistory(ctx, args[0])

		case "clearhist":
			_ = a.ClearHistory(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "ping":
			_ = a.Ping(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
