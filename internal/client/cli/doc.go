// Package cli provides the interactive apptbook command-line client.
//
// It wires configuration, the local session store, the API client, and an
// interactive REPL. Typical flow: restore the session from disk, prompt for
// credentials when needed, and execute user commands.
//
// Key features:
//   - Login / Register / Logout
//   - Profile display and update, password change
//   - Appointment listing, creation, cancel/complete/delete
//   - Aggregate statistics
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// When the session ends server-side (revoked or expired beyond refresh),
// the user is dropped back to the login prompt.
package cli
