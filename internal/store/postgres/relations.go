package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"worldkeep/internal/store"
)

const relationColumns = "id, campaign_id, source_id, target_id, relation_type, mirror_type, attitude, is_private, created_at, updated_at"

func scanRelation(sc rowScanner) (store.Relation, error) {
	var r store.Relation
	err := sc.Scan(
		&r.ID,
		&r.CampaignID,
		&r.SourceID,
		&r.TargetID,
		&r.Type,
		&r.MirrorType,
		&r.Attitude,
		&r.IsPrivate,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return store.Relation{}, err
	}
	return r, nil
}

// CreateRelation inserts the primary edge and, when a mirror type is set,
// the companion edge with endpoints and types swapped. Both inserts share
// one transaction so the pair can never be half-written.
func (c *Client) CreateRelation(ctx context.Context, in store.RelationInput) (int64, error) {
	if err := store.ValidateRelationInput(in); err != nil {
		return 0, err
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var campaignID int64
	err = tx.QueryRow(ctx,
		`SELECT campaign_id FROM entities WHERE id = $1`, in.SourceID,
	).Scan(&campaignID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, store.NewValidationError("source_id", "source entity does not exist")
	}
	if err != nil {
		return 0, fmt.Errorf("resolving source entity: %w", err)
	}

	insert := `
	INSERT INTO relations (campaign_id, source_id, target_id, relation_type, mirror_type, attitude, is_private)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	var id int64
	err = tx.QueryRow(ctx, insert,
		campaignID, in.SourceID, in.TargetID, in.Type, in.MirrorType, in.Attitude, in.IsPrivate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating relation: %w", err)
	}

	if in.MirrorType != "" {
		var mirrorID int64
		err = tx.QueryRow(ctx, insert,
			campaignID, in.TargetID, in.SourceID, in.MirrorType, in.Type, in.Attitude, in.IsPrivate,
		).Scan(&mirrorID)
		if err != nil {
			return 0, fmt.Errorf("creating mirror relation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing relation: %w", err)
	}

	return id, nil
}

func (c *Client) GetRelation(ctx context.Context, id int64) (*store.Relation, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = $1`, id)

	r, err := scanRelation(row)
	if errors.Is(err, pgx.ErrNoRows) {
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
func findCompanion(ctx context.Context, tx pgx.Tx, rel store.Relation) (int64, bool, error) {
	var id int64
	err := tx.QueryRow(ctx, `
	SELECT id FROM relations
	WHERE source_id = $1 AND target_id = $2 AND relation_type = $3 AND id <> $4
	ORDER BY id LIMIT 1`,
		rel.TargetID, rel.SourceID, rel.MirrorType, rel.ID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("locating companion edge: %w", err)
	}
	return id, true, nil
}

func (c *Client) UpdateRelation(ctx context.Context, id int64, patch store.RelationPatch) (bool, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = $1`, id)
	existing, err := scanRelation(row)
	if errors.Is(err, pgx.ErrNoRows) {
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

	_, err = tx.Exec(ctx, `
	UPDATE relations SET relation_type = $1, mirror_type = $2, attitude = $3, is_private = $4, updated_at = now()
	WHERE id = $5`,
		newType, newMirror, newAttitude, newPrivate, id)
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
				_, err = tx.Exec(ctx, `
				UPDATE relations SET relation_type = $1, mirror_type = $2, attitude = $3, is_private = $4, updated_at = now()
				WHERE id = $5`,
					newMirror, newType, newAttitude, newPrivate, companionID)
			} else {
				// Clearing the mirror detaches both sides into
				// independent one-way edges.
				_, err = tx.Exec(ctx, `
				UPDATE relations SET mirror_type = '', attitude = $1, is_private = $2, updated_at = now()
				WHERE id = $3`,
					newAttitude, newPrivate, companionID)
			}
			if err != nil {
				return false, fmt.Errorf("updating companion edge: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing relation update: %w", err)
	}

	return true, nil
}

func (c *Client) DeleteRelation(ctx context.Context, id int64) (bool, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE id = $1`, id)
	existing, err := scanRelation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading relation: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM relations WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("deleting relation: %w", err)
	}

	if existing.MirrorType != "" {
		companionID, found, err := findCompanion(ctx, tx, existing)
		if err != nil {
			return false, err
		}
		if found {
			if _, err := tx.Exec(ctx, `DELETE FROM relations WHERE id = $1`, companionID); err != nil {
				return false, fmt.Errorf("deleting companion edge: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing relation delete: %w", err)
	}

	return true, nil
}

func (c *Client) ListRelations(ctx context.Context, entityID int64) ([]store.Relation, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT `+relationColumns+` FROM relations WHERE source_id = $1 OR target_id = $1 ORDER BY id`,
		entityID)
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
	err := c.pool.QueryRow(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM relations
		WHERE source_id = $1 AND target_id = $2 AND ($3 = '' OR relation_type = $3)
	)`,
		sourceID, targetID, relType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking relation existence: %w", err)
	}
	return exists, nil
}
