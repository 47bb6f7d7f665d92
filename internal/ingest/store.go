package ingest

import (
	"context"

	"worldkeep/internal/store"
)

// Store is the subset of the storage contract the importer needs.
type Store interface {
	CreateCampaign(ctx context.Context, in store.CampaignInput) (int64, error)
	CreateEntity(ctx context.Context, in store.EntityInput) (int64, error)
	UpdateEntity(ctx context.Context, id int64, patch store.EntityPatch) (bool, error)
	CreateRelation(ctx context.Context, in store.RelationInput) (int64, error)
	CreateTag(ctx context.Context, in store.TagInput) (int64, error)
	AttachTag(ctx context.Context, tagID, entityID int64) (bool, error)
	CreateAttribute(ctx context.Context, in store.AttributeInput) (int64, error)
	CreatePost(ctx context.Context, in store.PostInput) (int64, error)
	AddInventoryItem(ctx context.Context, in store.InventoryItemInput) (int64, error)
	AttachAbility(ctx context.Context, in store.AbilityAttachmentInput) (int64, error)
}
