// Package client contains the client-side API contract for the recipe-ai
// backend and its HTTP/JSON implementation.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Login, Me and DetectDish.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the bearer
//     token from a TokenSource, streams image uploads as multipart/form-data,
//     tags every request with an X-Request-ID, and maps failures to errors.
//
// # Error Handling
//
// Non-2xx responses surface as *APIError carrying the status code and the
// server's "detail" payload. Common conditions are also matchable with
// errors.Is: ErrUnauthorized (401/403) and ErrUnavailable (transport failure,
// timeout, 502/503/504).
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation; per-call deadlines come from the
// configured request and detect timeouts.
package client
