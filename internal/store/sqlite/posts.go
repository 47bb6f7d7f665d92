package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"worldkeep/internal/store"
)

func (c *Client) ListPosts(ctx context.Context, entityID int64) ([]store.Post, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT id, entity_id, name, entry, position, is_private, created_at, updated_at
	FROM posts
	WHERE entity_id = ?
	ORDER BY position, created_at, id`, entityID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []store.Post{}
	for rows.Next() {
		var p store.Post
		var created, updated string
		if err := rows.Scan(&p.ID, &p.EntityID, &p.Name, &p.Entry, &p.Position, &p.IsPrivate, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		p.CreatedAt = parseTime(created)
		p.UpdatedAt = parseTime(updated)
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

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx, `
	INSERT INTO posts (entity_id, name, entry, position, is_private, created_at, updated_at)
	VALUES (?, ?, ?, `+positionExpr("posts")+`, ?, ?, ?)`,
		in.EntityID, in.Name, in.Entry, in.Position, in.EntityID, in.IsPrivate, now, now)
	if err != nil {
		return 0, fmt.Errorf("creating post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading post id: %w", err)
	}
	return id, nil
}

func (c *Client) UpdatePost(ctx context.Context, id int64, patch store.PostPatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now())}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return false, store.NewValidationError("name", "name must not be empty")
		}
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Entry != nil {
		sets = append(sets, "entry = ?")
		args = append(args, *patch.Entry)
	}
	if patch.Position != nil {
		sets = append(sets, "position = ?")
		args = append(args, *patch.Position)
	}
	if patch.IsPrivate != nil {
		sets = append(sets, "is_private = ?")
		args = append(args, *patch.IsPrivate)
	}

	return c.updateRow(ctx, "posts", id, sets, args)
}

func (c *Client) DeletePost(ctx context.Context, id int64) (bool, error) {
	return c.deleteRow(ctx, "posts", id)
}

func (c *Client) ReorderPosts(ctx context.Context, entityID int64, positions map[int64]int) error {
	return c.reorderRows(ctx, "posts", entityID, positions)
}
