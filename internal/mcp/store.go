package mcp

import (
	"context"

	"worldkeep/internal/store"
)

// Store is the subset of the storage contract the MCP tools need.
type Store interface {
	CreateEntity(ctx context.Context, in store.EntityInput) (int64, error)
	GetEntity(ctx context.Context, id int64) (*store.Entity, error)
	ListEntities(ctx context.Context, filter store.EntityFilter, page store.Page) ([]store.Entity, error)
	UpdateEntity(ctx context.Context, id int64, patch store.EntityPatch) (bool, error)
	DeleteEntity(ctx context.Context, id int64) (bool, error)
	SearchEntities(ctx context.Context, query string, campaignID int64, page store.Page) ([]store.SearchResult, error)
	CreateRelation(ctx context.Context, in store.RelationInput) (int64, error)
	ListRelations(ctx context.Context, entityID int64) ([]store.Relation, error)
	DeleteRelation(ctx context.Context, id int64) (bool, error)
	CreateTag(ctx context.Context, in store.TagInput) (int64, error)
	ListTags(ctx context.Context, campaignID int64) ([]store.Tag, error)
	AttachTag(ctx context.Context, tagID, entityID int64) (bool, error)
	ListEntityTags(ctx context.Context, entityID int64) ([]store.Tag, error)
}
