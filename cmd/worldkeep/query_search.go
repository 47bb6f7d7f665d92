package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/store"
)

func querySearchCmd() *cobra.Command {
	var campaignID int64
	var page int
	var pageSize int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Full-text search over entity names and entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuerySearch(args[0], campaignID, page, pageSize)
		},
	}
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "Campaign to search (defaults to the project default)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Results per page")
	return cmd
}

func runQuerySearch(query string, campaignID int64, page, pageSize int) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("worldkeep.yaml")
	if err != nil {
		return err
	}
	if campaignID == 0 {
		campaignID = cfg.DefaultCampaign
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	results, err := db.SearchEntities(ctx, query, campaignID, store.Page{Number: page, Size: pageSize})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(os.Stdout, "No matches found.")
		return nil
	}

	for _, result := range results {
		fmt.Fprintf(os.Stdout, "#%d %s (%s) score=%.2f\n",
			result.Entity.ID, result.Entity.Name, result.Entity.Kind, result.Score)
		if result.Snippet != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", result.Snippet)
		}
	}
	return nil
}
