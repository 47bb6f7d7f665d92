package postgres

import (
	"context"
	"fmt"
	"strings"
)

// Satellite tables share the same ownership and ordering shape: every row
// belongs to one entity and carries an explicit position. The helpers here
// keep the four stores' position and lifecycle semantics identical.

// reorderRows bulk-assigns positions inside one transaction. Ids that do
// not belong to entityID are silently unaffected; any failure rolls the
// whole batch back.
func (c *Client) reorderRows(ctx context.Context, table string, entityID int64, positions map[int64]int) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf("UPDATE %s SET position = $1, updated_at = now() WHERE id = $2 AND entity_id = $3", table)
	for id, position := range positions {
		if _, err := tx.Exec(ctx, query, position, id, entityID); err != nil {
			return fmt.Errorf("reordering %s: %w", table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	return nil
}

func (c *Client) deleteRow(ctx context.Context, table string, id int64) (bool, error) {
	tag, err := c.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return false, fmt.Errorf("deleting from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) updateRow(ctx context.Context, table string, id int64, sets []string, args []any) (bool, error) {
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))
	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}
