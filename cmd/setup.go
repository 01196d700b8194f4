package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/fretsheet/internal/repositories"
	"github.com/desertthunder/fretsheet/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a configuration file from the template.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	spreadsheetID := cmd.String("spreadsheet-id")
	force := cmd.Bool("force")

	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return fmt.Errorf("%w: %s already exists, pass --force to overwrite", shared.ErrInvalidArgument, configPath)
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	r.logger.Info("config file created", "path", configPath)

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load created config: %w", err)
	}

	if spreadsheetID != "" {
		config.Spreadsheet.ID = spreadsheetID
		if err := config.Save(configPath); err != nil {
			return fmt.Errorf("failed to save spreadsheet id: %w", err)
		}
		r.logger.Info("spreadsheet id saved", "id", spreadsheetID)
	}

	r.config = config
	r.configPath = configPath

	r.writePlain("✓ Config written to %s\n", configPath)
	if spreadsheetID == "" {
		r.writePlain("Set spreadsheet.id in %s before running auth login\n", configPath)
	}
	return nil
}

// SetupSheets provisions the fixed worksheets on a blank spreadsheet.
func (r *Runner) SetupSheets(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(ctx, cmd); err != nil {
		return err
	}

	created, err := repositories.ProvisionSheets(ctx, r.store, r.config.Retry)
	if err != nil {
		return err
	}

	if len(created) == 0 {
		return r.writePlain("All worksheets already present\n")
	}
	for _, title := range created {
		r.writePlain("✓ Created worksheet %s\n", title)
	}
	return nil
}

// SetupDatabase initializes the snapshot database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.ensureConfig(cmd)

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}
