package server

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/metrics"
	"github.com/gorilla/mux"
)

// Options configures [NewRouter].
type Options struct {
	Logger *log.Logger
	// Auth sets the acting user. Required.
	Auth Middleware
	// Limiter is applied to every authenticated route. Nil disables rate limiting.
	Limiter  *IPRateLimiter
	Handlers []Handler
}

// NewRouter builds the API router.
//
// Global middleware runs for every matched route: request id, access log, panic recovery and metrics. The API
// subrouter adds rate limiting and then authentication.
func NewRouter(opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := mux.NewRouter()
	r.Use(RequestIDMiddleware, Logging(logger), Recover(logger), metrics.Middleware)

	r.HandleFunc("/health", health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	if opts.Limiter != nil {
		api.Use(RateLimit(opts.Limiter))
	}
	if opts.Auth != nil {
		api.Use(opts.Auth)
	}
	for _, h := range opts.Handlers {
		h.Register(api)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
