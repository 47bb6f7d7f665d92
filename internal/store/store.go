package store

import "context"

// Store is the storage contract shared by the sqlite and postgres backends.
//
// Lookup and mutation methods report a missing id as (nil, nil) or
// (false, nil), never as an error. Validation failures surface as
// *ValidationError before any write happens. Every multi-row mutation runs
// inside a single transaction and rolls back fully on failure.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	CreateCampaign(ctx context.Context, in CampaignInput) (int64, error)
	GetCampaign(ctx context.Context, id int64) (*Campaign, error)
	ListCampaigns(ctx context.Context) ([]Campaign, error)

	CreateEntity(ctx context.Context, in EntityInput) (int64, error)
	GetEntity(ctx context.Context, id int64) (*Entity, error)
	ListEntities(ctx context.Context, filter EntityFilter, page Page) ([]Entity, error)
	UpdateEntity(ctx context.Context, id int64, patch EntityPatch) (bool, error)
	DeleteEntity(ctx context.Context, id int64) (bool, error)

	// SearchEntities matches the query as a literal phrase against entity
	// names and entries within one campaign, best match first. A blank
	// query matches nothing.
	SearchEntities(ctx context.Context, query string, campaignID int64, page Page) ([]SearchResult, error)

	CreateRelation(ctx context.Context, in RelationInput) (int64, error)
	GetRelation(ctx context.Context, id int64) (*Relation, error)
	UpdateRelation(ctx context.Context, id int64, patch RelationPatch) (bool, error)
	DeleteRelation(ctx context.Context, id int64) (bool, error)
	ListRelations(ctx context.Context, entityID int64) ([]Relation, error)
	RelationExists(ctx context.Context, sourceID, targetID int64, relType string) (bool, error)

	CreateTag(ctx context.Context, in TagInput) (int64, error)
	ListTags(ctx context.Context, campaignID int64) ([]Tag, error)
	// AttachTag returns false when the pairing already exists.
	AttachTag(ctx context.Context, tagID, entityID int64) (bool, error)
	// DetachTag is idempotent and returns true even when no row existed.
	DetachTag(ctx context.Context, tagID, entityID int64) (bool, error)
	ListEntityTags(ctx context.Context, entityID int64) ([]Tag, error)
	ListTagEntities(ctx context.Context, tagID int64) ([]Entity, error)

	ListAttributes(ctx context.Context, entityID int64) ([]Attribute, error)
	CreateAttribute(ctx context.Context, in AttributeInput) (int64, error)
	UpdateAttribute(ctx context.Context, id int64, patch AttributePatch) (bool, error)
	DeleteAttribute(ctx context.Context, id int64) (bool, error)
	ReorderAttributes(ctx context.Context, entityID int64, positions map[int64]int) error

	ListPosts(ctx context.Context, entityID int64) ([]Post, error)
	CreatePost(ctx context.Context, in PostInput) (int64, error)
	UpdatePost(ctx context.Context, id int64, patch PostPatch) (bool, error)
	DeletePost(ctx context.Context, id int64) (bool, error)
	ReorderPosts(ctx context.Context, entityID int64, positions map[int64]int) error

	ListInventory(ctx context.Context, entityID int64) ([]InventoryItem, error)
	AddInventoryItem(ctx context.Context, in InventoryItemInput) (int64, error)
	UpdateInventoryItem(ctx context.Context, id int64, patch InventoryItemPatch) (bool, error)
	DeleteInventoryItem(ctx context.Context, id int64) (bool, error)
	ReorderInventory(ctx context.Context, entityID int64, positions map[int64]int) error

	ListAbilities(ctx context.Context, entityID int64) ([]AbilityAttachment, error)
	AttachAbility(ctx context.Context, in AbilityAttachmentInput) (int64, error)
	UpdateAbilityAttachment(ctx context.Context, id int64, patch AbilityAttachmentPatch) (bool, error)
	// DetachAbility removes every attachment of the pair and reports
	// whether any row was removed.
	DetachAbility(ctx context.Context, entityID, abilityEntityID int64) (bool, error)
	ReorderAbilities(ctx context.Context, entityID int64, positions map[int64]int) error

	// Consistency projections consumed by the validate package.
	ListOrphanedMirrors(ctx context.Context, campaignID int64) ([]Relation, error)
	ListNonAbilityAttachments(ctx context.Context, campaignID int64) ([]AbilityAttachment, error)
}
