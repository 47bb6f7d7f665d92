package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
)

func queryTagsCmd() *cobra.Command {
	var campaignID int64
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags in a campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryTags(campaignID)
		},
	}
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "Campaign to list (defaults to the project default)")
	return cmd
}

func runQueryTags(campaignID int64) error {
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

	tags, err := db.ListTags(ctx, campaignID)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Fprintln(os.Stdout, "No tags found.")
		return nil
	}

	for _, tag := range tags {
		line := fmt.Sprintf("#%d %s", tag.ID, tag.Name)
		if tag.Color != "" {
			line += fmt.Sprintf(" [%s]", tag.Color)
		}
		if tag.Description != "" {
			line += " - " + tag.Description
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
