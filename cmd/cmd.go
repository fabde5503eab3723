// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Acting user id",
		Required: true,
		Sources:  cli.EnvVars("MARQUEE_USER"),
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func withFlags(flags []cli.Flag, extra ...cli.Flag) []cli.Flag {
	return append(append([]cli.Flag{}, flags...), extra...)
}

// setupCommand handles database setup and migration state.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

// listsCommand handles list inspection, creation and export.
func listsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"list", "ls"},
		Usage:   "Inspect, create and export lists",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the lists visible to a user, or the items of one list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "list"},
				},
				Flags:  withFlags(jsonFlags(), configFlag(), userFlag()),
				Action: r.ListsShow,
			},
			{
				Name:  "create",
				Usage: "Create a custom list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: withFlags(jsonFlags(), configFlag(), userFlag(),
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "List description",
					},
				),
				Action: r.ListsCreate,
			},
			{
				Name:  "export",
				Usage: "Export a list, or every visible list, as CSV, Markdown, text or JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "list"},
				},
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, markdown, text, json)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path: file stem for csv, directory for markdown, file for text",
					},
					&cli.BoolFlag{
						Name:  "stdout",
						Usage: "Write the export to stdout instead of files",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every visible list into --dir",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Output directory for --all (default: marquee_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers for --all (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Lists loaded per second for --all",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "personal",
						Usage: "Include the personal list with --all",
					},
				},
				Action: r.ListsExport,
			},
		},
	}
}

func transferFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		userFlag(),
		&cli.StringFlag{
			Name:     "from",
			Usage:    "Source list id or \"personal\"",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "Target list id",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "preserve-metadata",
			Usage: "Carry watched state and notes into the target list",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
	}
}

// transferCommand runs the transfer engine directly against the database.
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "transfer",
		Aliases: []string{"tx"},
		Usage:   "Copy or move items between lists",
		Commands: []*cli.Command{
			{
				Name:  "copy",
				Usage: "Copy one item (type:id) into the target list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "item"},
				},
				Flags:  transferFlags(),
				Action: r.TransferCopy,
			},
			{
				Name:  "move",
				Usage: "Move one item (type:id) into the target list",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "item"},
				},
				Flags:  transferFlags(),
				Action: r.TransferMove,
			},
			{
				Name:  "bulk",
				Usage: "Copy or move several items in one transaction",
				Flags: withFlags(transferFlags(),
					&cli.StringFlag{
						Name:  "op",
						Usage: "Operation (copy or move)",
						Value: "copy",
					},
					&cli.StringSliceFlag{
						Name:    "item",
						Aliases: []string{"i"},
						Usage:   "Item as type:id, repeatable (movie:12, series:3, collection:7)",
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "JSON file holding a bulk request body",
					},
				),
				Action: r.TransferBulk,
			},
		},
	}
}

// authCommand handles token helpers for local testing.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication helpers",
		Commands: []*cli.Command{
			{
				Name:  "token",
				Usage: "Sign a bearer token with the configured secret",
				Flags: []cli.Flag{
					configFlag(),
					userFlag(),
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email claim",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime",
						Value: time.Hour,
					},
				},
				Action: r.AuthToken,
			},
		},
	}
}
