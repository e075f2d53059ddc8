// Package flix provides an authenticated HTTP client for the Flix
// storyboard service.
//
// # Overview
//
// This package owns the two protocol-critical pieces of the tool: the FNAUTH
// request-signing scheme and the credential lifecycle. Everything else is a
// thin typed wrapper over the service's JSON endpoints (shows, episodes,
// sequences, panels, assets, chains, exports).
//
// # Architecture
//
// The package is split into five files:
//
//   - sign.go: canonical string construction and HMAC token generation
//   - credentials.go: credential storage, expiry arithmetic, re-authentication
//   - client.go: the HTTP client, signed header choke point, domain calls
//   - types.go: data structures mirroring the Flix API schema
//   - errors.go: the error taxonomy callers branch on
//
// # Request Signing
//
// Every request carries an Authorization header of the form
//
//	FNAUTH <accessKeyID>:<base64 HMAC-SHA256>
//
// computed over a canonical string of the method, an md5 content hash, the
// content type, a seconds-precision UTC timestamp, and the URL path with any
// query string stripped. The Date header is formatted from the same instant
// that was signed; the server rejects requests where the two disagree.
//
// The content hash treats strings, byte slices, and JSON-encodable values
// differently (byte slices are hex-encoded before hashing). This asymmetry is
// part of the deployed protocol and is preserved as-is.
//
// # Credential Lifecycle
//
// Authentication is a Basic-auth POST to /authenticate returning an access
// key id, a secret, and an expiry date. A credential is considered usable
// only while more than two hours of validity remain, so no multi-step
// operation (such as an export poll loop) crosses expiry mid-flight. The
// Credentials manager re-authenticates transparently when a caller needs a
// key and the held credential is missing or stale; refresh runs under a
// mutex so concurrent callers never duplicate the login call.
//
// Credentials live in memory only. Nothing is persisted across process
// restarts.
//
// # Error Handling
//
// The client never logs-and-returns-nil. Failures surface as typed errors:
//
//   - ErrInvalidCredential: signing attempted with an empty secret
//   - ErrAuthenticationFailed: login rejected or malformed auth response
//   - ErrTokenRevoked: a signed request answered with 401; callers should
//     prompt for re-login rather than retry
//   - *StatusError: any other non-2xx response, carrying method/path/code
//
// An empty result set (for example a show with no sequences) is an empty
// slice, never an error.
//
// # Thread Safety
//
// Client and Credentials are safe for concurrent use. Domain calls may run
// in parallel; they share one credential manager, which serializes refresh.
package flix
