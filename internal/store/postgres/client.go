package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"worldkeep/internal/store"
)

var _ store.Store = (*Client)(nil)

type Client struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close(ctx context.Context) error {
	c.pool.Close()
	return nil
}

func encodeDoc(doc map[string]any, raw string) (string, error) {
	if raw != "" {
		// The jsonb column would reject malformed input outright, so a raw
		// payload that does not parse collapses to the empty document here,
		// matching what a read of a corrupt row returns.
		if !json.Valid([]byte(raw)) {
			return "{}", nil
		}
		return raw, nil
	}
	if doc == nil {
		return "{}", nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeDoc never fails: a malformed stored payload decodes to an empty
// document so one corrupt row cannot block reads.
func decodeDoc(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return map[string]any{}
	}
	return doc
}
