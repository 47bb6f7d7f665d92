package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/store"
)

func queryListCmd() *cobra.Command {
	var campaignID int64
	var kind string
	var page int
	var pageSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(campaignID, kind, page, pageSize)
		},
	}
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "Campaign to filter (defaults to the project default)")
	cmd.Flags().StringVar(&kind, "kind", "", "Entity kind to filter")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Results per page")
	return cmd
}

func runQueryList(campaignID int64, kind string, page, pageSize int) error {
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

	entities, err := db.ListEntities(ctx,
		store.EntityFilter{CampaignID: campaignID, Kind: kind},
		store.Page{Number: page, Size: pageSize})
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		fmt.Fprintln(os.Stdout, "No entities found.")
		return nil
	}

	for _, entity := range entities {
		line := fmt.Sprintf("#%d %s (%s)", entity.ID, entity.Name, entity.Kind)
		if entity.Subtype != "" {
			line += fmt.Sprintf(" [%s]", entity.Subtype)
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
