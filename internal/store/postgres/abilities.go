package postgres

import (
	"context"
	"fmt"

	"worldkeep/internal/store"
)

const abilityColumns = "id, entity_id, ability_entity_id, charges_used, notes, position, created_at, updated_at"

func scanAbility(sc rowScanner) (store.AbilityAttachment, error) {
	var a store.AbilityAttachment
	err := sc.Scan(&a.ID, &a.EntityID, &a.AbilityEntityID, &a.ChargesUsed, &a.Notes, &a.Position, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return store.AbilityAttachment{}, err
	}
	return a, nil
}

func (c *Client) ListAbilities(ctx context.Context, entityID int64) ([]store.AbilityAttachment, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT `+abilityColumns+`
	FROM entity_abilities
	WHERE entity_id = $1
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

	var id int64
	err := c.pool.QueryRow(ctx, `
	INSERT INTO entity_abilities (entity_id, ability_entity_id, charges_used, notes, position)
	VALUES ($1, $2, $3, $4, COALESCE($5::int, (SELECT MAX(position) + 1 FROM entity_abilities WHERE entity_id = $1), 0))
	RETURNING id`,
		in.EntityID, in.AbilityEntityID, in.ChargesUsed, in.Notes, in.Position,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("attaching ability: %w", err)
	}
	return id, nil
}

func (c *Client) UpdateAbilityAttachment(ctx context.Context, id int64, patch store.AbilityAttachmentPatch) (bool, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if patch.ChargesUsed != nil {
		if *patch.ChargesUsed < 0 {
			return false, store.NewValidationError("charges_used", "charges used must not be negative")
		}
		args = append(args, *patch.ChargesUsed)
		sets = append(sets, fmt.Sprintf("charges_used = $%d", len(args)))
	}
	if patch.Notes != nil {
		args = append(args, *patch.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	if patch.Position != nil {
		args = append(args, *patch.Position)
		sets = append(sets, fmt.Sprintf("position = $%d", len(args)))
	}

	return c.updateRow(ctx, "entity_abilities", id, sets, args)
}

// DetachAbility removes every attachment of the pair.
func (c *Client) DetachAbility(ctx context.Context, entityID, abilityEntityID int64) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`DELETE FROM entity_abilities WHERE entity_id = $1 AND ability_entity_id = $2`,
		entityID, abilityEntityID)
	if err != nil {
		return false, fmt.Errorf("detaching ability: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (c *Client) ReorderAbilities(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "entity_abilities", entityID, positions)
}
