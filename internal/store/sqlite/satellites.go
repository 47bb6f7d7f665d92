package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Satellite tables share the same ownership and ordering shape: every row
// belongs to one entity and carries an explicit position. The helpers here
// keep the four stores' position and lifecycle semantics identical.

// positionExpr computes the insert position: the caller's value when
// supplied, otherwise one past the entity's current maximum, 0 for the
// first row. Bind order: position (nullable), entity id.
func positionExpr(table string) string {
	return fmt.Sprintf("COALESCE(?, (SELECT MAX(position) + 1 FROM %s WHERE entity_id = ?), 0)", table)
}

// reorderRows bulk-assigns positions inside one transaction. Ids that do
// not belong to entityID are silently unaffected; any failure rolls the
// whole batch back.
func (c *Client) reorderRows(ctx context.Context, table string, entityID int64, positions map[int64]int) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatTime(time.Now())
	query := fmt.Sprintf("UPDATE %s SET position = ?, updated_at = ? WHERE id = ? AND entity_id = ?", table)
	for id, position := range positions {
		if _, err := tx.ExecContext(ctx, query, position, now, id, entityID); err != nil {
			return fmt.Errorf("reordering %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	return nil
}

func (c *Client) deleteRow(ctx context.Context, table string, id int64) (bool, error) {
	res, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if err != nil {
		return false, fmt.Errorf("deleting from %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

func (c *Client) updateRow(ctx context.Context, table string, id int64, sets []string, args []any) (bool, error) {
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := c.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}
