package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
	"worldkeep/internal/store"
)

func queryEntityCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "entity <id>",
		Short: "Display an entity with its data and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entity id: %s", args[0])
			}
			return runQueryEntity(id, full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Also print attributes, posts, inventory, and abilities")
	return cmd
}

func runQueryEntity(id int64, full bool) error {
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

	entity, err := db.GetEntity(ctx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		fmt.Fprintf(os.Stdout, "No entity found for id %d.\n", id)
		return nil
	}

	fmt.Fprintf(os.Stdout, "Name: %s\n", entity.Name)
	fmt.Fprintf(os.Stdout, "Kind: %s\n", entity.Kind)
	if entity.Subtype != "" {
		fmt.Fprintf(os.Stdout, "Subtype: %s\n", entity.Subtype)
	}
	fmt.Fprintf(os.Stdout, "Campaign: %d\n", entity.CampaignID)
	if entity.ParentID != nil {
		if parent, err := db.GetEntity(ctx, *entity.ParentID); err == nil && parent != nil {
			fmt.Fprintf(os.Stdout, "Parent: %s (#%d)\n", parent.Name, parent.ID)
		} else {
			fmt.Fprintf(os.Stdout, "Parent: #%d\n", *entity.ParentID)
		}
	}
	if entity.IsPrivate {
		fmt.Fprintln(os.Stdout, "Private: yes")
	}

	tags, err := db.ListEntityTags(ctx, entity.ID)
	if err != nil {
		return err
	}
	if len(tags) > 0 {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, t.Name)
		}
		fmt.Fprintf(os.Stdout, "Tags: %s\n", joinValues(names))
	}

	if entity.Entry != "" {
		fmt.Fprintf(os.Stdout, "\n%s\n", entity.Entry)
	}

	if len(entity.Data) > 0 {
		keys := make([]string, 0, len(entity.Data))
		for key := range entity.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintln(os.Stdout, "\nData:")
		for _, key := range keys {
			fmt.Fprintf(os.Stdout, "  %s: %v\n", key, entity.Data[key])
		}
	}

	if !full {
		return nil
	}
	return printSatellites(ctx, db, entity.ID)
}

func printSatellites(ctx context.Context, db store.Store, entityID int64) error {
	attributes, err := db.ListAttributes(ctx, entityID)
	if err != nil {
		return err
	}
	if len(attributes) > 0 {
		fmt.Fprintln(os.Stdout, "\nAttributes:")
		for _, a := range attributes {
			fmt.Fprintf(os.Stdout, "  %s: %s\n", a.Name, a.Value)
		}
	}

	posts, err := db.ListPosts(ctx, entityID)
	if err != nil {
		return err
	}
	if len(posts) > 0 {
		fmt.Fprintln(os.Stdout, "\nPosts:")
		for _, p := range posts {
			fmt.Fprintf(os.Stdout, "  [%d] %s\n", p.Position, p.Name)
		}
	}

	inventory, err := db.ListInventory(ctx, entityID)
	if err != nil {
		return err
	}
	if len(inventory) > 0 {
		fmt.Fprintln(os.Stdout, "\nInventory:")
		for _, item := range inventory {
			line := fmt.Sprintf("  %dx entity #%d", item.Quantity, item.ItemEntityID)
			if entity, err := db.GetEntity(ctx, item.ItemEntityID); err == nil && entity != nil {
				line = fmt.Sprintf("  %dx %s", item.Quantity, entity.Name)
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}

	abilities, err := db.ListAbilities(ctx, entityID)
	if err != nil {
		return err
	}
	if len(abilities) > 0 {
		fmt.Fprintln(os.Stdout, "\nAbilities:")
		for _, a := range abilities {
			line := fmt.Sprintf("  entity #%d", a.AbilityEntityID)
			if entity, err := db.GetEntity(ctx, a.AbilityEntityID); err == nil && entity != nil {
				line = "  " + entity.Name
			}
			if a.ChargesUsed > 0 {
				line += fmt.Sprintf(" (%d charges used)", a.ChargesUsed)
			}
			fmt.Fprintln(os.Stdout, line)
		}
	}

	return nil
}

func joinValues(values []string) string {
	return strings.Join(values, ", ")
}
