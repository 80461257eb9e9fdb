// Package cli provides the interactive Sundaram command-line client.
//
// It wires configuration, the local session database, the API client and a
// REPL. A session saved by a previous run is restored on start; a background
// watcher pings the server and shows online/offline in the prompt.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
