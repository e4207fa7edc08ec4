// Package cli provides the interactive pricescout command-line client.
//
// It wires configuration, the local database, the API gateway client, and an
// interactive REPL. Typical flow: restore the saved session, start a
// background connectivity watcher, and execute user commands.
//
// Key features:
//   - Sign in with a Google ID credential / sign out
//   - Product price search with live supersession of stale requests
//   - Trending searches
//   - Image scan: pick a file or photograph with a camera, upload for
//     product detection
//   - Search history: list, delete one, clear all
//   - Profile view and rename
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
