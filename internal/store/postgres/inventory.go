package postgres

import (
	"context"
	"fmt"

	"worldkeep/internal/store"
)

func (c *Client) ListInventory(ctx context.Context, entityID int64) ([]store.InventoryItem, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT id, entity_id, item_entity_id, quantity, description, position, created_at, updated_at
	FROM inventory_items
	WHERE entity_id = $1
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	items := []store.InventoryItem{}
	for rows.Next() {
		var it store.InventoryItem
		if err := rows.Scan(&it.ID, &it.EntityID, &it.ItemEntityID, &it.Quantity, &it.Description, &it.Position, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory: %w", err)
	}

	return items, nil
}

func (c *Client) AddInventoryItem(ctx context.Context, in store.InventoryItemInput) (int64, error) {
	if in.EntityID <= 0 {
		return 0, store.NewValidationError("entity_id", "entity reference is required")
	}
	if in.ItemEntityID <= 0 {
		return 0, store.NewValidationError("item_entity_id", "item entity reference is required")
	}
	if in.Quantity < 0 {
		return 0, store.NewValidationError("quantity", "quantity must not be negative")
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var id int64
	err := c.pool.QueryRow(ctx, `
	INSERT INTO inventory_items (entity_id, item_entity_id, quantity, description, position)
	VALUES ($1, $2, $3, $4, COALESCE($5::int, (SELECT MAX(position) + 1 FROM inventory_items WHERE entity_id = $1), 0))
	RETURNING id`,
		in.EntityID, in.ItemEntityID, quantity, in.Description, in.Position,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("adding inventory item: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id int64, patch store.InventoryItemPatch) (bool, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return false, store.NewValidationError("quantity", "quantity must not be negative")
		}
		args = append(args, *patch.Quantity)
		sets = append(sets, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if patch.Position != nil {
		args = append(args, *patch.Position)
		sets = append(sets, fmt.Sprintf("position = $%d", len(args)))
	}

	return c.updateRow(ctx, "inventory_items", id, sets, args)
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "inventory_items", id)
}

func (c *Client) ReorderInventory(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "inventory_items", entityID, positions)
}
