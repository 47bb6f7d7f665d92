package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"worldkeep/internal/store"
)

const tagColumns = "id, campaign_id, name, color, description, created_at"

func scanTag(sc rowScanner) (store.Tag, error) {
	var t store.Tag
	err := sc.Scan(&t.ID, &t.CampaignID, &t.Name, &t.Color, &t.Description, &t.CreatedAt)
	if err != nil {
		return store.Tag{}, err
	}
	return t, nil
}

func (c *Client) CreateTag(ctx context.Context, in store.TagInput) (int64, error) {
	if err := store.ValidateTagInput(in); err != nil {
		return 0, err
	}

	var id int64
	err := c.pool.QueryRow(ctx,
		`INSERT INTO tags (campaign_id, name, color, description) VALUES ($1, $2, $3, $4) RETURNING id`,
		in.CampaignID, in.Name, in.Color, in.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating tag: %w", err)
	}
	return id, nil
}

func (c *Client) ListTags(ctx context.Context, campaignID int64) ([]store.Tag, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE campaign_id = $1 ORDER BY name, id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// AttachTag is a no-op returning false when the pairing already exists.
func (c *Client) AttachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	tag, err := c.pool.Exec(ctx,
		`INSERT INTO entity_tags (entity_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		entityID, tagID)
	if err != nil {
		return false, fmt.Errorf("attaching tag: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DetachTag is unconditionally idempotent: detaching an absent pairing
// still reports success.
func (c *Client) DetachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	_, err := c.pool.Exec(ctx,
		`DELETE FROM entity_tags WHERE tag_id = $1 AND entity_id = $2`, tagID, entityID)
	if err != nil {
		return false, fmt.Errorf("detaching tag: %w", err)
	}
	return true, nil
}

func (c *Client) ListEntityTags(ctx context.Context, entityID int64) ([]store.Tag, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT t.id, t.campaign_id, t.name, t.color, t.description, t.created_at
	FROM tags t
	JOIN entity_tags et ON et.tag_id = t.id
	WHERE et.entity_id = $1
	ORDER BY t.name, t.id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing entity tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func (c *Client) ListTagEntities(ctx context.Context, tagID int64) ([]store.Entity, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT e.id, e.campaign_id, e.kind, e.name, e.subtype, e.entry, e.image, e.parent_id, e.is_private, e.data, e.created_at, e.updated_at
	FROM entities e
	JOIN entity_tags et ON et.entity_id = e.id
	WHERE et.tag_id = $1
	ORDER BY e.kind, e.name, e.id`, tagID)
	if err != nil {
		return nil, fmt.Errorf("listing tagged entities: %w", err)
	}
	defer rows.Close()

	entities := []store.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tagged entities: %w", err)
	}

	return entities, nil
}

func collectTags(rows pgx.Rows) ([]store.Tag, error) {
	tags := []store.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}
