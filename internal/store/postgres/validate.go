package postgres

import (
	"context"
	"fmt"

	"worldkeep/internal/store"
)

// ListOrphanedMirrors returns relations that declare a mirror type but
// have no companion edge pointing back. These indicate a pair that fell
// out of sync (or an intentionally one-directional edge that still
// carries a mirror label).
func (c *Client) ListOrphanedMirrors(ctx context.Context, campaignID int64) ([]store.Relation, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT `+relationColumns+`
	FROM relations r
	WHERE r.mirror_type <> ''
	  AND ($1 = 0 OR r.campaign_id = $1)
	  AND NOT EXISTS (
		SELECT 1 FROM relations m
		WHERE m.source_id = r.target_id
		  AND m.target_id = r.source_id
		  AND m.relation_type = r.mirror_type
	  )
	ORDER BY r.id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing orphaned mirrors: %w", err)
	}
	defer rows.Close()

	relations := []store.Relation{}
	for rows.Next() {
		r, err := scanRelation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning relation: %w", err)
		}
		relations = append(relations, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating orphaned mirrors: %w", err)
	}

	return relations, nil
}

// ListNonAbilityAttachments returns ability attachments whose referenced
// entity is not of kind ability. The store permits these (kind is not
// validated at the attachment boundary); the checker reports them.
func (c *Client) ListNonAbilityAttachments(ctx context.Context, campaignID int64) ([]store.AbilityAttachment, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT a.id, a.entity_id, a.ability_entity_id, a.charges_used, a.notes, a.position, a.created_at, a.updated_at
	FROM entity_abilities a
	JOIN entities ability ON a.ability_entity_id = ability.id
	JOIN entities owner ON a.entity_id = owner.id
	WHERE ability.kind <> $1
	  AND ($2 = 0 OR owner.campaign_id = $2)
	ORDER BY a.id`, store.KindAbility, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing non-ability attachments: %w", err)
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
		return nil, fmt.Errorf("iterating non-ability attachments: %w", err)
	}

	return attachments, nil
}
