package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the embedded template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if r.config == nil {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			r.logger.Info("config file not found, creating from template", "path", configPath)
			if err := shared.CreateConfigFile(configPath); err != nil {
				r.logger.Warn("failed to create config file, using defaults", "error", err)
			} else {
				r.logger.Info("config file created", "path", configPath)
			}
		}
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, closeDB, err := r.rawDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrationsContext(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ database ready at %s\n", config.Database.Path)
}

// SetupStatus prints every known migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.rawDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	states, err := shared.MigrationStatus(ctx, db)
	if err != nil {
		return err
	}

	for _, s := range states {
		status := "pending"
		if s.Applied && s.AppliedAt != nil {
			status = "applied " + s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		} else if s.Applied {
			status = "applied"
		}
		if err := r.writePlain("%04d  %-40s %s\n", s.Version, s.Name, status); err != nil {
			return err
		}
	}
	return nil
}

// SetupRollback reverts the latest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.rawDatabase(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	r.logger.Info("rolled back latest migration")
	return r.writePlain("✓ rolled back latest migration\n")
}

// rawDatabase opens the configured database without migrating it. The returned func closes it unless the
// database was injected.
func (r *Runner) rawDatabase(cmd *cli.Command) (*sql.DB, func(), error) {
	if r.db != nil {
		return r.db, func() {}, nil
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	db, err := shared.OpenConfigured(config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database: %w", err)
	}
	return db, func() { db.Close() }, nil
}
