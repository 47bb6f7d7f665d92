package sqlite

import (
	"context"
	"fmt"
	"time"

	"worldkeep/internal/store"
)

const abilityColumns = "id, entity_id, ability_entity_id, charges_used, notes, position, created_at, updated_at"

func scanAbility(sc rowScanner) (store.AbilityAttachment, error) {
	var a store.AbilityAttachment
	var created, updated string
	err := sc.Scan(&a.ID, &a.EntityID, &a.AbilityEntityID, &a.ChargesUsed, &a.Notes, &a.Position, &created, &updated)
	if err != nil {
		return store.AbilityAttachment{}, err
	}
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

func (c *Client) ListAbilities(ctx context.Context, entityID int64) ([]store.AbilityAttachment, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT `+abilityColumns+`
	FROM entity_abilities
	WHERE entity_id = ?
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing abilities: %w", err)
	}
	defer rows.Close()

	attachments := []store.AbilityAttachment{}
	for rows.Next() {
		a, err := scanAbility(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ability attachment: %w", err)
		}
		attachments = append(attachments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating abilities: %w", err)
	}

	return attachments, nil
}

// AttachAbility does not check for an existing attachment of the same
// pair; callers wanting uniqueness consult ListAbilities first.
func (c *Client) AttachAbility(ctx context.Context, in store.AbilityAttachmentInput) (int64, error) {
	if in.EntityID <= 0 {
		return 0, store.NewValidationError("entity_id", "entity reference is required")
	}
	if in.AbilityEntityID <= 0 {
		return 0, store.NewValidationError("ability_entity_id", "ability entity reference is required")
	}
	if in.ChargesUsed < 0 {
		return 0, store.NewValidationError("charges_used", "charges used must not be negative")
	}

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx, `
	INSERT INTO entity_abilities (entity_id, ability_entity_id, charges_used, notes, position, created_at, updated_at)
	VALUES (?, ?, ?, ?, `+positionExpr("entity_abilities")+`, ?, ?)`,
		in.EntityID, in.AbilityEntityID, in.ChargesUsed, in.Notes, in.Position, in.EntityID, now, now)
	if err != nil {
		return 0, fmt.Errorf("attaching ability: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading ability attachment id: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateAbilityAttachment(ctx context.Context, id int64, patch store.AbilityAttachmentPatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if patch.ChargesUsed != nil {
		if *patch.ChargesUsed < 0 {
			return false, store.NewValidationError("charges_used", "charges used must not be negative")
		}
		sets = append(sets, "charges_used = ?")
		args = append(args, *patch.ChargesUsed)
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}

	return c.updateRow(ctx, "entity_abilities", id, sets, args)
}

// DetachAbility removes every attachment of the pair.
func (c *Client) DetachAbility(ctx context.Context, entityID, abilityEntityID int64) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entity_abilities WHERE entity_id = ? AND ability_entity_id = ?`,
		entityID, abilityEntityID)
	if err != nil {
		return false, fmt.Errorf("detaching ability: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

func (c *Client) ReorderAbilities(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "entity_abilities", entityID, positions)
}
