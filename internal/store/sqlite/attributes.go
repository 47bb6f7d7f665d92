package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"worldkeep/internal/store"
)

func (c *Client) ListAttributes(ctx context.Context, entityID int64) ([]store.Attribute, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, entity_id, name, value, position, created_at, updated_at
	FROM attributes
	WHERE entity_id = ?
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	attributes := []store.Attribute{}
	for rows.Next() {
		var a store.Attribute
		var created, updated string
		if err := rows.Scan(&a.ID, &a.EntityID, &a.Name, &a.Value, &a.Position, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
		a.CreatedAt = parseTime(created)
		a.UpdatedAt = parseTime(updated)
		attributes = append(attributes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attributes: %w", err)
	}

	return attributes, nil
}

func (c *Client) CreateAttribute(ctx context.Context, in store.AttributeInput) (int64, error) {
	if in.EntityID <= 0 {
		return 0, store.NewValidationError("entity_id", "entity reference is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, store.NewValidationError("name", "name must not be empty")
	}

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx, `
	INSERT INTO attributes (entity_id, name, value, position, created_at, updated_at)
	VALUES (?, ?, ?, `+positionExpr("attributes")+`, ?, ?)`,
		in.EntityID, in.Name, in.Value, in.Position, in.EntityID, now, now)
	if err != nil {
		return 0, fmt.Errorf("creating attribute: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading attribute id: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateAttribute(ctx context.Context, id int64, patch store.AttributePatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Value != nil {
		sets = append(sets, "value = ?")
		args = append(args, *patch.Value)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}

	return c.updateRow(ctx, "attributes", id, sets, args)
}

func (c *Client) DeleteAttribute(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "attributes", id)
}

func (c *Client) ReorderAttributes(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "attributes", entityID, positions)
}
