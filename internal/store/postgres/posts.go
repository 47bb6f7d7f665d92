package postgres

import (
	"context"
	"fmt"
	"strings"

	"worldkeep/internal/store"
)

func (c *Client) ListPosts(ctx context.Context, entityID int64) ([]store.Post, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT id, entity_id, name, entry, position, is_private, created_at, updated_at
	FROM posts
	WHERE entity_id = $1
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []store.Post{}
	for rows.Next() {
		var p store.Post
		if err := rows.Scan(&p.ID, &p.EntityID, &p.Name, &p.Entry, &p.Position, &p.IsPrivate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}

	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, in store.PostInput) (int64, error) {
	if in.EntityID <= 0 {
		return 0, store.NewValidationError("entity_id", "entity reference is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, store.NewValidationError("name", "name must not be empty")
	}

	var id int64
	err := c.pool.QueryRow(ctx, `
	INSERT INTO posts (entity_id, name, entry, position, is_private)
	VALUES ($1, $2, $3, COALESCE($4::int, (SELECT MAX(position) + 1 FROM posts WHERE entity_id = $1), 0), $5)
	RETURNING id`,
		in.EntityID, in.Name, in.Entry, in.Position, in.IsPrivate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating post: %w", err)
	}
	return id, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, patch store.PostPatch) (bool, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Entry != nil {
		args = append(args, *patch.Entry)
		sets = append(sets, fmt.Sprintf("entry = $%d", len(args)))
	}
	if patch.Position != nil {
		args = append(args, *patch.Position)
		sets = append(sets, fmt.Sprintf("position = $%d", len(args)))
	}
	if patch.IsPrivate != nil {
		args = append(args, *patch.IsPrivate)
		sets = append(sets, fmt.Sprintf("is_private = $%d", len(args)))
	}

	return c.updateRow(ctx, "posts", id, sets, args)
}

func (c *Client) DeletePost(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "posts", id)
}

func (c *Client) ReorderPosts(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "posts", entityID, positions)
}
