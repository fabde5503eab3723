package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// UserStore records users as they are first seen.
type UserStore interface {
	Ensure(ctx context.Context, user *models.User) error
}

// Authenticator is the HTTP middleware that sets the acting user on the request context.
type Authenticator struct {
	verifier *Verifier
	users    UserStore
	logger   *log.Logger
}

// NewAuthenticator creates an [Authenticator]. A nil verifier enables development mode.
func NewAuthenticator(verifier *Verifier, users UserStore, logger *log.Logger) *Authenticator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Authenticator{verifier: verifier, users: users, logger: logger.WithPrefix("auth")}
}

// FromConfig builds an [Authenticator] from the auth section of the config.
func FromConfig(cfg shared.AuthConfig, users UserStore, logger *log.Logger) *Authenticator {
	var verifier *Verifier
	if cfg.JWTSecret != "" {
		verifier = NewVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience)
	}
	return NewAuthenticator(verifier, users, logger)
}

// DevMode reports whether identities are taken from the X-User-ID header.
func (a *Authenticator) DevMode() bool { return a.verifier == nil }

// Identify resolves the user of r without touching the request.
func (a *Authenticator) Identify(r *http.Request) (*models.User, error) {
	if a.verifier == nil {
		id := strings.TrimSpace(r.Header.Get(DevUserHeader))
		if id == "" {
			return nil, shared.ErrUnauthenticated
		}
		return &models.User{ID: id}, nil
	}

	token, err := bearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return &models.User{ID: claims.Subject, Email: claims.Email, DisplayName: claims.Name}, nil
}

// Middleware rejects unauthenticated requests with 401 and upserts the user of the rest.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Identify(r)
		if err != nil {
			a.logger.Debug("rejected request", "path", r.URL.Path, "err", err)
			unauthorized(w, err)
			return
		}

		if a.users != nil {
			if err := a.users.Ensure(r.Context(), user); err != nil {
				a.logger.Error("failed to record user", "user", user.ID, "err", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "internal server error"})
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user.ID)))
	})
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := shared.ErrUnauthenticated.Error()
	if errors.Is(err, shared.ErrInvalidToken) {
		msg = shared.ErrInvalidToken.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="marquee"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
