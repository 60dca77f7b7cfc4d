// Package client talks to the SecureDrive HTTP API.
//
// Client is the transport contract used by the client services; HTTPClient
// implements it over net/http with JSON bodies and a multipart upload.
// Session-scoped calls take the bearer token explicitly.
//
// Non-2xx answers are mapped back onto the sentinel errors in
// internal/common, so callers use errors.Is the same way on both sides of
// the wire. Transport failures become ErrUnavailable.
package client
