package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"worldkeep/internal/store"
)

func (c *Client) CreateCampaign(ctx context.Context, in store.CampaignInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, store.NewValidationError("name", "name must not be empty")
	}

	settings, err := encodeDoc(in.Settings, in.RawSettings)
	if err != nil {
		return 0, fmt.Errorf("encoding campaign settings: %w", err)
	}

	var id int64
	err = c.pool.QueryRow(ctx,
		`INSERT INTO campaigns (name, settings) VALUES ($1, $2) RETURNING id`,
		in.Name, settings,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("creating campaign: %w", err)
	}
	return id, nil
}

func (c *Client) GetCampaign(ctx context.Context, id int64) (*store.Campaign, error) {
	var cam store.Campaign
	var settings []byte
	err := c.pool.QueryRow(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM campaigns WHERE id = $1`, id,
	).Scan(&cam.ID, &cam.Name, &settings, &cam.CreatedAt, &cam.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	cam.Settings = decodeDoc(settings)
	return &cam, nil
}

func (c *Client) ListCampaigns(ctx context.Context) ([]store.Campaign, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM campaigns ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []store.Campaign{}
	for rows.Next() {
		var cam store.Campaign
		var settings []byte
		if err := rows.Scan(&cam.ID, &cam.Name, &settings, &cam.CreatedAt, &cam.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		cam.Settings = decodeDoc(settings)
		campaigns = append(campaigns, cam)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}
