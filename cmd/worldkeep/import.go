package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/ingest"
)

func importCmd() *cobra.Command {
	var campaignID int64
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a YAML seed document (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return runImport(path, campaignID)
		},
	}
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "Campaign to import into (defaults to the project default; 0 with no default creates the seed's campaign)")
	return cmd
}

func runImport(path string, campaignID int64) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("worldkeep.yaml")
	if err != nil {
		return err
	}
	if campaignID == 0 {
		campaignID = cfg.DefaultCampaign
	}

	var in io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening seed document: %w", err)
		}
		defer f.Close()
		in = f
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.Run(ctx, db, campaignID, in)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "Import complete.")
	fmt.Fprintf(os.Stdout, "  Campaign:          %d\n", result.CampaignID)
	fmt.Fprintf(os.Stdout, "  Tags created:      %d\n", result.TagsCreated)
	fmt.Fprintf(os.Stdout, "  Entities created:  %d\n", result.EntitiesCreated)
	fmt.Fprintf(os.Stdout, "  Relations created: %d\n", result.RelationsCreated)

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(os.Stdout, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}

	return nil
}
