package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/store"
)

func initCmd() *cobra.Command {
	var projectName string
	var driver string
	var dsn string
	var campaignName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new worldkeep project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName, driver, dsn, campaignName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&driver, "driver", "sqlite", "Database driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN (defaults to a local sqlite file)")
	cmd.Flags().StringVar(&campaignName, "campaign", "", "Create an initial campaign and make it the default")
	return cmd
}

func runInit(projectName, driver, dsn, campaignName string) error {
	configPath := "worldkeep.yaml"
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	if dsn == "" {
		switch driver {
		case "sqlite":
			dsn = "worldkeep.db"
		case "postgres":
			return fmt.Errorf("--dsn is required for the postgres driver")
		}
	}

	cfg := &config.ProjectConfig{
		Project: projectName,
		Version: 1,
		Database: config.DatabaseConfig{
			Driver: driver,
			DSN:    dsn,
		},
	}
	if err := validateDraft(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	if campaignName != "" {
		id, err := db.CreateCampaign(ctx, store.CampaignInput{Name: campaignName})
		if err != nil {
			return err
		}
		cfg.DefaultCampaign = id
	}

	contents := fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  driver: %s\n  dsn: %s\n", cfg.Project, cfg.Database.Driver, cfg.Database.DSN)
	if cfg.DefaultCampaign != 0 {
		contents += fmt.Sprintf("\ndefault_campaign: %d\n", cfg.DefaultCampaign)
	}
	if err := os.WriteFile(configPath, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	fmt.Fprintf(os.Stdout, "Initialised %s with the %s driver.\n", projectName, driver)
	if cfg.DefaultCampaign != 0 {
		fmt.Fprintf(os.Stdout, "Default campaign %q has id %d.\n", campaignName, cfg.DefaultCampaign)
	}
	return nil
}

// validateDraft runs the loader's checks before anything touches disk.
func validateDraft(cfg *config.ProjectConfig) error {
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	return nil
}
