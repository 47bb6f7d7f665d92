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

func (c *Client) CreateCampaign(ctx context.Context, in store.CampaignInput) (int64, error) {
	if strings.TrimSpace(in.Name) == "" {
		return 0, store.NewValidationError("name", "name must not be empty")
	}

	settings, err := encodeDoc(in.Settings, in.RawSettings)
	if err != nil {
		return 0, fmt.Errorf("encoding campaign settings: %w", err)
	}

	now := formatTime(time.Now())
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO campaigns (name, settings, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		in.Name, settings, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("creating campaign: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading campaign id: %w", err)
	}
	return id, nil
}

func (c *Client) GetCampaign(ctx context.Context, id int64) (*store.Campaign, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM campaigns WHERE id = ?`, id)

	var cam store.Campaign
	var settings []byte
	var created, updated string
	err := row.Scan(&cam.ID, &cam.Name, &settings, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting campaign: %w", err)
	}

	cam.Settings = decodeDoc(settings)
	cam.CreatedAt = parseTime(created)
	cam.UpdatedAt = parseTime(updated)
	return &cam, nil
}

func (c *Client) ListCampaigns(ctx context.Context) ([]store.Campaign, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM campaigns ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []store.Campaign{}
	for rows.Next() {
		var cam store.Campaign
		var settings []byte
		var created, updated string
		if err := rows.Scan(&cam.ID, &cam.Name, &settings, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		cam.Settings = decodeDoc(settings)
		cam.CreatedAt = parseTime(created)
		cam.UpdatedAt = parseTime(updated)
		campaigns = append(campaigns, cam)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}
