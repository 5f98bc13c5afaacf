// Package api implements the remote API client: an HTTP transport, the
// authenticated request pipeline, and the single-flight refresh coordinator
// that together keep the token pair valid across concurrent requests.
//
// Split of responsibilities:
//   - Transport performs one HTTP exchange, nothing more.
//   - Pipeline attaches the access token and handles 401/403 uniformly.
//   - Coordinator performs the refresh exchange, de-duplicating concurrent
//     attempts and tearing the session down on terminal failure.
//   - Client exposes typed endpoint methods on top of both.
//
// The token store is written only by the Coordinator (refresh outcome) and
// by the session controller (login/logout); the Pipeline merely reads it.
package api
