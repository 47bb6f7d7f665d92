package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"worldkeep/internal/store"
)

const entityColumns = "id, campaign_id, kind, name, subtype, entry, image, parent_id, is_private, data, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(sc rowScanner) (store.Entity, error) {
	var e store.Entity
	var parent sql.NullInt64
	var data []byte
	var created, updated string
	err := sc.Scan(
		&e.ID,
		&e.CampaignID,
		&e.Kind,
		&e.Name,
		&e.Subtype,
		&e.Entry,
		&e.Image,
		&parent,
		&e.IsPrivate,
		&data,
		&created,
		&updated,
	)
	if err != nil {
		return store.Entity{}, err
	}
	if parent.Valid {
		v := parent.Int64
		e.ParentID = &v
	}
	e.Data = decodeDoc(data)
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

func (c *Client) CreateEntity(ctx context.Context, in store.EntityInput) (int64, error) {
	if err := store.ValidateEntityInput(in); err != nil {
		return 0, err
	}

	data, err := encodeDoc(in.Data, in.RawData)
	if err != nil {
		return 0, fmt.Errorf("encoding entity data: %w", err)
	}

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx, `
	INSERT INTO entities (campaign_id, kind, name, subtype, entry, image, parent_id, is_private, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.CampaignID, in.Kind, in.Name, in.Subtype, in.Entry, in.Image, in.ParentID, in.IsPrivate, data, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("creating entity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading entity id: %w", err)
	}
	return id, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*store.Entity, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = ?`, id)

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.EntityFilter, page store.Page) ([]store.Entity, error) {
	page = page.Normalize()

	query := `SELECT ` + entityColumns + ` FROM entities WHERE (? = 0 OR campaign_id = ?) AND (? = '' OR kind = ?)`
	args := []any{filter.CampaignID, filter.CampaignID, filter.Kind, filter.Kind}
	if filter.ParentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *filter.ParentID)
	}

	// Listings within one kind order by name; mixed-kind listings group by
	// kind first. The id tiebreak keeps page boundaries stable.
	if filter.Kind != "" {
		query += ` ORDER BY name, id`
	} else {
		query += ` ORDER BY kind, name, id`
	}
	query += ` LIMIT ? OFFSET ?`
	args = append(args, page.Size, page.Offset())

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
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
		return nil, fmt.Errorf("iterating entities: %w", err)
	}

	return entities, nil
}

func (c *Client) UpdateEntity(ctx context.Context, id int64, patch store.EntityPatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Kind != nil {
		if !store.ValidKind(*patch.Kind) {
			return false, store.NewValidationError("kind", "unknown entity kind")
		}
		sets = append(sets, "kind = ?")
		args = append(args, *patch.Kind)
	}
	if patch.Subtype != nil {
		sets = append(sets, "subtype = ?")
		args = append(args, *patch.Subtype)
	}
	if patch.Entry != nil {
		sets = append(sets, "entry = ?")
		args = append(args, *patch.Entry)
	}
	if patch.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *patch.Image)
	}
	if patch.ClearParent {
		sets = append(sets, "parent_id = NULL")
	} else if patch.ParentID != nil {
		sets = append(sets, "parent_id = ?")
		args = append(args, *patch.ParentID)
	}
	if patch.IsPrivate != nil {
		sets = append(sets, "is_private = ?")
		args = append(args, *patch.IsPrivate)
	}
	if patch.Data != nil {
		data, err := json.Marshal(patch.Data)
		if err != nil {
			return false, fmt.Errorf("encoding entity data: %w", err)
		}
		sets = append(sets, "data = ?")
		args = append(args, string(data))
	}

	args = append(args, id)
	res, err := c.db.ExecContext(ctx,
		`UPDATE entities SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("updating entity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteEntity removes the row; satellite rows fall to the ON DELETE
// actions declared on every dependent table and the index row falls to
// the FTS delete trigger, all inside the statement's transaction.
func (c *Client) DeleteEntity(ctx context.Context, id int64) (bool, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting entity: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}
