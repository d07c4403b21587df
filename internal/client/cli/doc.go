// Package cli provides the interactive recipe-ai command-line client.
//
// It wires configuration, the local credential store, the API client and
// the upload/detect workflow behind an interactive REPL and a set of
// one-shot cobra subcommands that share the same App methods.
//
// Public commands: help, register, login, exit | quit.
// Protected commands (need a stored token): me, whoami, select, drop,
// detect, replace, status, logout.
//
// Protected commands run through the auth guard: without a token the user
// is sent to login before anything is fetched, and a 401 from the server
// clears the stored session.
package cli
