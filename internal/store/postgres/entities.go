package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"worldkeep/internal/store"
)

const entityColumns = "id, campaign_id, kind, name, subtype, entry, image, parent_id, is_private, data, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(sc rowScanner) (store.Entity, error) {
	var e store.Entity
	var data []byte
	err := sc.Scan(
		&e.ID,
		&e.CampaignID,
		&e.Kind,
		&e.Name,
		&e.Subtype,
		&e.Entry,
		&e.Image,
		&e.ParentID,
		&e.IsPrivate,
		&data,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return store.Entity{}, err
	}
	e.Data = decodeDoc(data)
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

	var id int64
	err = c.pool.QueryRow(ctx, `
	INSERT INTO entities (campaign_id, kind, name, subtype, entry, image, parent_id, is_private, data)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id`,
		in.CampaignID, in.Kind, in.Name, in.Subtype, in.Entry, in.Image, in.ParentID, in.IsPrivate, data,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating entity: %w", err)
	}
	return id, nil
}

func (c *Client) GetEntity(ctx context.Context, id int64) (*store.Entity, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE id = $1`, id)

	e, err := scanEntity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting entity: %w", err)
	}
	return &e, nil
}

func (c *Client) ListEntities(ctx context.Context, filter store.EntityFilter, page store.Page) ([]store.Entity, error) {
	page = page.Normalize()

	query := `SELECT ` + entityColumns + ` FROM entities WHERE ($1 = 0 OR campaign_id = $1) AND ($2 = '' OR kind = $2)`
	args := []any{filter.CampaignID, filter.Kind}
	if filter.ParentID != nil {
		query += fmt.Sprintf(` AND parent_id = $%d`, len(args)+1)
		args = append(args, *filter.ParentID)
	}

	// Listings within one kind order by name; mixed-kind listings group by
	// kind first. The id tiebreak keeps page boundaries stable.
	if filter.Kind != "" {
		query += ` ORDER BY name, id`
	} else {
		query += ` ORDER BY kind, name, id`
	}
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	rows, err := c.pool.Query(ctx, query, args...)
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
	sets := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		add("name", *patch.Name)
	}
	if patch.Kind != nil {
		if !store.ValidKind(*patch.Kind) {
			return false, store.NewValidationError("kind", "unknown entity kind")
		}
		add("kind", *patch.Kind)
	}
	if patch.Subtype != nil {
		add("subtype", *patch.Subtype)
	}
	if patch.Entry != nil {
		add("entry", *patch.Entry)
	}
	if patch.Image != nil {
		add("image", *patch.Image)
	}
	if patch.ClearParent {
		sets = append(sets, "parent_id = NULL")
	} else if patch.ParentID != nil {
		add("parent_id", *patch.ParentID)
	}
	if patch.IsPrivate != nil {
		add("is_private", *patch.IsPrivate)
	}
	if patch.Data != nil {
		data, err := json.Marshal(patch.Data)
		if err != nil {
			return false, fmt.Errorf("encoding entity data: %w", err)
		}
		add("data", string(data))
	}

	args = append(args, id)
	tag, err := c.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE entities SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return false, fmt.Errorf("updating entity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteEntity removes the row; satellite rows fall to the ON DELETE
// actions declared on every dependent table, and the search vector lives
// in the row itself.
func (c *Client) DeleteEntity(ctx context.Context, id int64) (bool, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting entity: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
