package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "marquee",
		Usage:    "Copy and move movies, series and collections between watch lists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, ui.ErrorLine(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps domain errors to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidRequest), errors.Is(err, shared.ErrInvalidArgument),
		errors.Is(err, shared.ErrMissingArgument):
		return 2
	case errors.Is(err, shared.ErrNotFound):
		return 3
	case errors.Is(err, shared.ErrPermissionDenied):
		return 4
	case errors.Is(err, shared.ErrConflict):
		return 5
	default:
		return 1
	}
}
