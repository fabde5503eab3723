// Package server provides the HTTP API: routing, middleware and JSON handlers over the transfer engine and the
// list service.
//
// # Router
//
// [NewRouter] builds a gorilla/mux router. GET /health and GET /metrics are public; every other route lives on a
// subrouter that applies rate limiting and authentication, in that order.
//
// [Middleware] values registered with Use run in the order they are added (first added is outermost).
//
// # Handlers
//
// Handlers implement [Handler] and register their own routes on the subrouter they are given, so route
// definitions stay next to the code serving them.
//
//   - [TransferHandler]: single copy and move, and bulk operations
//   - [ListHandler]: list CRUD, items and shares
//   - [ContentHandler]: movie, series, episode and collection creation
//
// # Errors
//
// Handlers return errors wrapping the sentinels in internal/shared. [WriteError] maps them with errors.Is:
//
//	ErrNotFound           404
//	ErrPermissionDenied   403
//	ErrInvalidRequest     400 (also malformed bodies and bad path parameters)
//	ErrConflict           409
//	ErrUnauthenticated    401
//
// Anything else is logged and reported as a 500 without details. Error bodies are {"success":false,"error":"..."}.
// A transfer that only found duplicates is a successful 200.
//
// # Server
//
// [Server] wraps http.Server with the configured timeouts and shuts down gracefully when its context is cancelled.
package server
