package sqlite

import (
	"context"
	"fmt"
	"time"

	"worldkeep/internal/store"
)

func (c *Client) ListInventory(ctx context.Context, entityID int64) ([]store.InventoryItem, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, entity_id, item_entity_id, quantity, description, position, created_at, updated_at
	FROM inventory_items
	WHERE entity_id = ?
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	items := []store.InventoryItem{}
	for rows.Next() {
		var it store.InventoryItem
		var created, updated string
		if err := rows.Scan(&it.ID, &it.EntityID, &it.ItemEntityID, &it.Quantity, &it.Description, &it.Position, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		it.CreatedAt = parseTime(created)
		it.UpdatedAt = parseTime(updated)
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

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx, `
	INSERT INTO inventory_items (entity_id, item_entity_id, quantity, description, position, created_at, updated_at)
	VALUES (?, ?, ?, ?, `+positionExpr("inventory_items")+`, ?, ?)`,
		in.EntityID, in.ItemEntityID, quantity, in.Description, in.Position, in.EntityID, now, now)
	if err != nil {
		return 0, fmt.Errorf("adding inventory item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading inventory item id: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id int64, patch store.InventoryItemPatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return false, store.NewValidationError("quantity", "quantity must not be negative")
		}
		sets = append(sets, "quantity = ?")
		args = append(args, *patch.Quantity)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}

	return c.updateRow(ctx, "inventory_items", id, sets, args)
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "inventory_items", id)
}

func (c *Client) ReorderInventory(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "inventory_items", entityID, positions)
}
