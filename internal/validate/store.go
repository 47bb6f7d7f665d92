package validate

import (
	"context"

	"worldkeep/internal/store"
)

// StoreValidator is the subset of the storage contract the checker needs.
type StoreValidator interface {
	ListEntities(ctx context.Context, filter store.EntityFilter, page store.Page) ([]store.Entity, error)
	GetEntity(ctx context.Context, id int64) (*store.Entity, error)
	ListOrphanedMirrors(ctx context.Context, campaignID int64) ([]store.Relation, error)
	ListNonAbilityAttachments(ctx context.Context, campaignID int64) ([]store.AbilityAttachment, error)
}
