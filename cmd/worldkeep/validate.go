package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/validate"
)

func validateCmd() *cobra.Command {
	var campaignID int64
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run consistency checks against the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(campaignID)
		},
	}
	cmd.Flags().Int64Var(&campaignID, "campaign", 0, "Campaign to check (0 checks everything)")
	return cmd
}

func runValidate(campaignID int64) error {
	ctx := context.Background()

	cfg, err := config.LoadProjectConfig("worldkeep.yaml")
	if err != nil {
		return err
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	report, err := validate.Run(ctx, db, campaignID)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "Errors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(os.Stdout, "")
		}
		fmt.Fprintf(os.Stdout, "Warnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out *os.File, issues []validate.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(out, "  - entity %d: %s (%s)\n", issue.EntityID, issue.Message, issue.Code)
	}
}
