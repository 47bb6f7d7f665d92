package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"worldkeep/internal/config"
)

func queryRelationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations <entity-id>",
		Short: "Display every relation touching an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entity id: %s", args[0])
			}
			return runQueryRelations(id)
		},
	}
	return cmd
}

func runQueryRelations(entityID int64) error {
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

	relations, err := db.ListRelations(ctx, entityID)
	if err != nil {
		return err
	}
	if len(relations) == 0 {
		fmt.Fprintf(os.Stdout, "No relations found for entity %d.\n", entityID)
		return nil
	}

	names := make(map[int64]string)
	lookup := func(id int64) string {
		if name, ok := names[id]; ok {
			return name
		}
		name := fmt.Sprintf("#%d", id)
		if entity, err := db.GetEntity(ctx, id); err == nil && entity != nil {
			name = entity.Name
		}
		names[id] = name
		return name
	}

	for _, rel := range relations {
		line := fmt.Sprintf("[%d] %s -%s-> %s", rel.ID, lookup(rel.SourceID), rel.Type, lookup(rel.TargetID))
		if rel.MirrorType != "" {
			line += fmt.Sprintf(" (mirror: %s)", rel.MirrorType)
		}
		if rel.Attitude != 0 {
			line += fmt.Sprintf(" attitude=%d", rel.Attitude)
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}
