package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"worldkeep/internal/store"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	c, err := New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "worldkeep.db"))
	if err != nil {
		t.Fatalf("opening sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(ctx) })

	if err := c.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensuring schema: %v", err)
	}
	return c
}

func testCampaign(t *testing.T, c *Client) int64 {
	t.Helper()
	id, err := c.CreateCampaign(context.Background(), store.CampaignInput{Name: "Test Campaign"})
	if err != nil {
		t.Fatalf("creating campaign: %v", err)
	}
	return id
}

func mustEntity(t *testing.T, c *Client, campaignID int64, kind, name string) int64 {
	t.Helper()
	id, err := c.CreateEntity(context.Background(), store.EntityInput{
		CampaignID: campaignID,
		Kind:       kind,
		Name:       name,
	})
	if err != nil {
		t.Fatalf("creating entity %s: %v", name, err)
	}
	return id
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
