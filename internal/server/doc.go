// Package server provides HTTP routing, middleware, and the OAuth redirect
// callback for the login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] implements the identity-provider redirect contract: the
// provider delivers code, state, and optionally error as query parameters on
// a fixed callback route.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code through the session manager, advances the loading
// tracker through the oauth and profile stages, and sends the outcome through
// a one-shot result channel. It only processes one callback to prevent replay
// attacks.
//
// A provider error or missing parameters leave the user on the failure page
// with a manual start-over link; nothing retries automatically. After a
// successful exchange the handler polls the token key briefly to ride out
// store write-visibility lag, then navigates to the protected area after a
// short settle delay.
//
// # Current Usage
//
// When the user runs `soundscope auth login`, a temporary HTTP server starts
// on localhost, handles the callback, and shuts down after receiving the
// result.
package server
