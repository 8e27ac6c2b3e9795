// Package cli provides the interactive authkeeper command-line client.
//
// It restores a saved session on start, then runs a small REPL with the
// commands signup, login, me, update, avatar and logout. The access token is
// written to a private session file so it survives restarts.
package cli
