package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"worldkeep/internal/store"
)

const relationColumns = "id, campaign_id, source_id, target_id, relation_type, mirror_type, attitude, is_private, created_at, updated_at"

func scanRelation(sc rowScanner) (store.Relation, error) {
	var r store.Relation
	var created, updated string
	err := sc.Scan(
		&r.ID,
		&r.CampaignID,
		&r.SourceID,
		&r.TargetID,
		&r.Type,
		&r.MirrorType,
		&r.Attitude,
		&r.IsPrivate,
		&created,
		&updated,
	)
	if err != nil {
		return store.Relation{}, err
	}
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

// CreateRelation inserts the primary edge and, when a mirror type is set,
// the companion edge with endpoints and types swapped. Both inserts share
// one transaction so the pair can never be half-written.
func (c *Client) CreateRelation(ctx context.Context, in store.RelationInput) (int64, error) {
	if err := store.ValidateRelationInput(in); err != nil {
		return 0, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var campaignID int64
	err = tx.QueryRowContext(ctx,
		`SELECT campaign_id FROM entities WHERE id = ?`, in.SourceID,
	).Scan(&campaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.NewValidationError("source_id", "source entity does not exist")
	}
	if err != nil {
		return 0, fmt.Errorf("resolving source entity: %w", err)
	}

	now := formatTime(time.Now())
	insert := `
	INSERT INTO relations (campaign_id, source_id, target_id, relation_type, mirror_type, attitude, is_private, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := tx.ExecContext(ctx, insert,
		campaignID, in.SourceID, in.TargetID, in.Type, in.MirrorType, in.Attitude, in.IsPrivate, now, now)
	if err != nil {
		return 0, fmt.Errorf("creating relation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading relation id: %w", err)
	}

	if in.MirrorType != "" {
		_, err = tx.ExecContext(ctx, insert,
			campaignID, in.TargetID, in.SourceID, in.MirrorType, in.Type, in.Attitude, in.IsPrivate, now, now)
		if err != nil {
			return 0, fmt.Errorf("creating mirror relation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing relation: %w", err)
	}

	return id, nil
}

func (c *Client) GetRelation(ctx context.Context, id int64) (*store.Relation, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = ?`, id)

	r, err := scanRelation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting relation: %w", err)
	}
	return &r, nil
}

// findCompanion locates the reverse edge carrying the primary's mirror
// type as its own type. Exact match only; a missing companion is a valid
// state and is never fabricated.
func findCompanion(ctx context.Context, tx *sql.Tx, rel store.Relation) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
	SELECT id FROM relations
	WHERE source_id = ? AND target_id = ? AND relation_type = ? AND id <> ?
	ORDER BY id LIMIT 1`,
		rel.TargetID, rel.SourceID, rel.MirrorType, rel.ID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("locating companion edge: %w", err)
	}
	return id, true, nil
}

func (c *Client) UpdateRelation(ctx context.Context, id int64, patch store.RelationPatch) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = ?`, id)
	existing, err := scanRelation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading relation: %w", err)
	}

	newType := existing.Type
	if patch.Type != nil {
		newType = *patch.Type
	}
	newMirror := existing.MirrorType
	if patch.MirrorType != nil {
		newMirror = *patch.MirrorType
	}
	newAttitude := existing.Attitude
	if patch.Attitude != nil {
		newAttitude = *patch.Attitude
	}
	newPrivate := existing.IsPrivate
	if patch.IsPrivate != nil {
		newPrivate = *patch.IsPrivate
	}

	if strings.TrimSpace(newType) == "" {
		return false, store.NewValidationError("type", "relation type must not be empty")
	}
	if newAttitude < store.MinAttitude || newAttitude > store.MaxAttitude {
		return false, store.NewValidationError("attitude", "attitude must be between -100 and 100")
	}

	now := formatTime(time.Now())
	_, err = tx.ExecContext(ctx, `
	UPDATE relations SET relation_type = ?, mirror_type = ?, attitude = ?, is_private = ?, updated_at = ?
	WHERE id = ?`,
		newType, newMirror, newAttitude, newPrivate, now, id)
	if err != nil {
		return false, fmt.Errorf("updating relation: %w", err)
	}

	if existing.MirrorType != "" {
		companionID, found, err := findCompanion(ctx, tx, existing)
		if err != nil {
			return false, err
		}
		if found {
			if newMirror != "" {
				// Complementary write: the primary's type is the
				// companion's mirror type and vice versa.
				_, err = tx.ExecContext(ctx, `
				UPDATE relations SET relation_type = ?, mirror_type = ?, attitude = ?, is_private = ?, updated_at = ?
				WHERE id = ?`,
					newMirror, newType, newAttitude, newPrivate, now, companionID)
			} else {
				// Clearing the mirror detaches both sides into
				// independent one-way edges.
				_, err = tx.ExecContext(ctx, `
				UPDATE relations SET mirror_type = '', attitude = ?, is_private = ?, updated_at = ?
				WHERE id = ?`,
					newAttitude, newPrivate, now, companionID)
			}
			if err != nil {
				return false, fmt.Errorf("updating companion edge: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing relation update: %w", err)
	}

	return true, nil
}

func (c *Client) DeleteRelation(ctx context.Context, id int64) (bool, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = ?`, id)
	existing, err := scanRelation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading relation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("deleting relation: %w", err)
	}

	if existing.MirrorType != "" {
		companionID, found, err := findCompanion(ctx, tx, existing)
		if err != nil {
			return false, err
		}
		if found {
			if _, err := tx.ExecContext(ctx, `DELETE FROM relations WHERE id = ?`, companionID); err != nil {
				return false, fmt.Errorf("deleting companion edge: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing relation delete: %w", err)
	}

	return true, nil
}

func (c *Client) ListRelations(ctx context.Context, entityID int64) ([]store.Relation, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE source_id = ? OR target_id = ? ORDER BY id`,
		entityID, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing relations: %w", err)
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
		return nil, fmt.Errorf("iterating relations: %w", err)
	}

	return relations, nil
}

func (c *Client) RelationExists(ctx context.Context, sourceID, targetID int64, relType string) (bool, error) {
	var exists bool
	err := c.db.QueryRowContext(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM relations
		WHERE source_id = ? AND target_id = ? AND (? = '' OR relation_type = ?)
	)`,
		sourceID, targetID, relType, relType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking relation existence: %w", err)
	}
	return exists, nil
}
