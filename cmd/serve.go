package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/lists"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/transfer"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}

	logger, err := shared.NewLoggerFromConfig(config.Log)
	if err != nil {
		return err
	}
	r.logger = logger

	db, err := r.database(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	handler, cleanup := buildHandler(config, db, logger)
	defer cleanup()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(config.Server, handler, logger)
	logger.Info("starting marquee", "addr", srv.Addr(), "database", config.Database.Path)
	return srv.Run(ctx)
}

// buildHandler wires the repositories, services and handlers behind the router. cleanup stops background work.
func buildHandler(config *shared.Config, db *sql.DB, logger *log.Logger) (http.Handler, func()) {
	authenticator := auth.FromConfig(config.Auth, repositories.NewUserRepository(db), logger)
	if authenticator.DevMode() {
		logger.Warn("no jwt secret configured, trusting the " + auth.DevUserHeader + " header")
	}

	var limiter *server.IPRateLimiter
	if config.Server.RateLimitPerSecond > 0 {
		limiter = server.NewIPRateLimiter(config.Server.RateLimitPerSecond, config.Server.RateLimitBurst).
			TrustProxyHeaders(config.Server.TrustProxyHeaders)
	}

	svc := lists.NewService(db, logger)
	router := server.NewRouter(server.Options{
		Logger:  logger,
		Auth:    authenticator.Middleware,
		Limiter: limiter,
		Handlers: []server.Handler{
			server.NewTransferHandler(transfer.NewEngine(db, logger), logger),
			server.NewListHandler(svc, logger),
			server.NewContentHandler(svc, logger),
		},
	})

	return router, func() {
		if limiter != nil {
			limiter.Close()
		}
	}
}
