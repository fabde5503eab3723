package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthToken signs a bearer token for --user with the configured HS256 secret.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret (or %s) must be set to sign tokens", shared.ErrMissingConfig, shared.JWTSecretEnv)
	}

	verifier := auth.NewVerifier(config.Auth.JWTSecret, config.Auth.Issuer, config.Auth.Audience)
	token, err := verifier.Sign(cmd.String("user"), cmd.String("email"), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", token)
}
