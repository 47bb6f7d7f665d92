package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"worldkeep/internal/store"
)

const tagColumns = "id, campaign_id, name, color, description, created_at"

func scanTag(sc rowScanner) (store.Tag, error) {
	var t store.Tag
	var created string
	err := sc.Scan(&t.ID, &t.CampaignID, &t.Name, &t.Color, &t.Description, &created)
	if err != nil {
		return store.Tag{}, err
	}
	t.CreatedAt = parseTime(created)
	return t, nil
}

func (c *Client) CreateTag(ctx context.Context, in store.TagInput) (int64, error) {
	if err := store.ValidateTagInput(in); err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx,
		`INSERT INTO tags (campaign_id, name, color, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		in.CampaignID, in.Name, in.Color, in.Description, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("creating tag: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading tag id: %w", err)
	}
	return id, nil
}

func (c *Client) ListTags(ctx context.Context, campaignID int64) ([]store.Tag, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE campaign_id = ? ORDER BY name, id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// AttachTag is a no-op returning false when the pairing already exists.
func (c *Client) AttachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	res, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO entity_tags (entity_id, tag_id, created_at) VALUES (?, ?, ?)`,
		entityID, tagID, formatTime(time.Now()))
	if err != nil {
		return false, fmt.Errorf("attaching tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

// DetachTag is unconditionally idempotent: detaching an absent pairing
// still reports success.
func (c *Client) DetachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM entity_tags WHERE tag_id = ? AND entity_id = ?`, tagID, entityID)
	if err != nil {
		return false, fmt.Errorf("detaching tag: %w", err)
	}
	return true, nil
}

func (c *Client) ListEntityTags(ctx context.Context, entityID int64) ([]store.Tag, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT t.id, t.campaign_id, t.name, t.color, t.description, t.created_at
	FROM tags t
	JOIN entity_tags et ON et.tag_id = t.id
	WHERE et.entity_id = ?
	ORDER BY t.name, t.id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing entity tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func (c *Client) ListTagEntities(ctx context.Context, tagID int64) ([]store.Entity, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT e.id, e.campaign_id, e.kind, e.name, e.subtype, e.entry, e.image, e.parent_id, e.is_private, e.data, e.created_at, e.updated_at
	FROM entities e
	JOIN entity_tags et ON et.entity_id = e.id
	WHERE et.tag_id = ?
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

func collectTags(rows *sql.Rows) ([]store.Tag, error) {
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
