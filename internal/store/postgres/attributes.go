package postgres

import (
	"context"
	"fmt"
	"strings"

	"worldkeep/internal/store"
)

func (c *Client) ListAttributes(ctx context.Context, entityID int64) ([]store.Attribute, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT id, entity_id, name, value, position, created_at, updated_at
	FROM attributes
	WHERE entity_id = $1
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing attributes: %w", err)
	}
	defer rows.Close()

	attributes := []store.Attribute{}
	for rows.Next() {
		var a store.Attribute
		if err := rows.Scan(&a.ID, &a.EntityID, &a.Name, &a.Value, &a.Position, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning attribute: %w", err)
		}
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

	var id int64
	err := c.pool.QueryRow(ctx, `
	INSERT INTO attributes (entity_id, name, value, position)
	VALUES ($1, $2, $3, COALESCE($4::int, (SELECT MAX(position) + 1 FROM attributes WHERE entity_id = $1), 0))
	RETURNING id`,
		in.EntityID, in.Name, in.Value, in.Position,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating attribute: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateAttribute(ctx context.Context, id int64, patch store.AttributePatch) (bool, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Value != nil {
		args = append(args, *patch.Value)
		sets = append(sets, fmt.Sprintf("value = $%d", len(args)))
	}
	if patch.Position != nil {
		args = append(args, *patch.Position)
		sets = append(sets, fmt.Sprintf("position = $%d", len(args)))
	}

	return c.updateRow(ctx, "attributes", id, sets, args)
}

func (c *Client) DeleteAttribute(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "attributes", id)
}

func (c *Client) ReorderAttributes(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "attributes", entityID, positions)
}
