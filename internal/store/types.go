package store

import "time"

// Entity kinds form a fixed enumeration. The store rejects anything else.
const (
	KindCharacter    = "character"
	KindLocation     = "location"
	KindItem         = "item"
	KindOrganisation = "organisation"
	KindEvent        = "event"
	KindNote         = "note"
	KindAbility      = "ability"
	KindJournal      = "journal"
	KindRace         = "race"
	KindQuest        = "quest"
	KindFamily       = "family"
)

var entityKinds = map[string]struct{}{
	KindCharacter:    {},
	KindLocation:     {},
	KindItem:         {},
	KindOrganisation: {},
	KindEvent:        {},
	KindNote:         {},
	KindAbility:      {},
	KindJournal:      {},
	KindRace:         {},
	KindQuest:        {},
	KindFamily:       {},
}

func ValidKind(kind string) bool {
	_, ok := entityKinds[kind]
	return ok
}

type Campaign struct {
	ID        int64
	Name      string
	Settings  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CampaignInput struct {
	Name     string
	Settings map[string]any
	// RawSettings, when non-empty, is stored as-is instead of serializing Settings.
	RawSettings string
}

type Entity struct {
	ID         int64
	CampaignID int64
	Kind       string
	Name       string
	Subtype    string
	Entry      string
	Image      string
	ParentID   *int64
	IsPrivate  bool
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EntityInput struct {
	CampaignID int64
	Kind       string
	Name       string
	Subtype    string
	Entry      string
	Image      string
	ParentID   *int64
	IsPrivate  bool
	Data       map[string]any
	// RawData, when non-empty, is stored as-is instead of serializing Data.
	RawData string
}

// EntityPatch is a sparse patch: nil fields are left untouched. The
// modification timestamp is refreshed even when every field is nil.
type EntityPatch struct {
	Name      *string
	Kind      *string
	Subtype   *string
	Entry     *string
	Image     *string
	ParentID  *int64
	IsPrivate *bool
	// ClearParent detaches the entity from its parent. Takes precedence
	// over ParentID.
	ClearParent bool
	// Data replaces the whole structured payload when non-nil.
	Data map[string]any
}

type EntityFilter struct {
	CampaignID int64
	Kind       string
	ParentID   *int64
}

type Relation struct {
	ID         int64
	CampaignID int64
	SourceID   int64
	TargetID   int64
	Type       string
	MirrorType string
	Attitude   int
	IsPrivate  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type RelationInput struct {
	SourceID   int64
	TargetID   int64
	Type       string
	MirrorType string
	Attitude   int
	IsPrivate  bool
}

type RelationPatch struct {
	Type       *string
	MirrorType *string
	Attitude   *int
	IsPrivate  *bool
}

type Tag struct {
	ID          int64
	CampaignID  int64
	Name        string
	Color       string
	Description string
	CreatedAt   time.Time
}

type TagInput struct {
	CampaignID  int64
	Name        string
	Color       string
	Description string
}

type Attribute struct {
	ID        int64
	EntityID  int64
	Name      string
	Value     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AttributeInput struct {
	EntityID int64
	Name     string
	Value    string
	// Position defaults to one past the entity's current maximum.
	Position *int
}

type AttributePatch struct {
	Name     *string
	Value    *string
	Position *int
}

type Post struct {
	ID        int64
	EntityID  int64
	Name      string
	Entry     string
	Position  int
	IsPrivate bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PostInput struct {
	EntityID  int64
	Name      string
	Entry     string
	Position  *int
	IsPrivate bool
}

type PostPatch struct {
	Name      *string
	Entry     *string
	Position  *int
	IsPrivate *bool
}

type InventoryItem struct {
	ID           int64
	EntityID     int64
	ItemEntityID int64
	Quantity     int
	Description  string
	Position     int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InventoryItemInput struct {
	EntityID     int64
	ItemEntityID int64
	Quantity     int
	Description  string
	Position     *int
}

type InventoryItemPatch struct {
	Quantity    *int
	Description *string
	Position    *int
}

// AbilityAttachment links an entity to an ability entity. Charge capacity
// lives in the ability entity's Data under "charges"; only the used counter
// is stored here. Duplicate attachments of the same pair are allowed and
// uniqueness is left to callers.
type AbilityAttachment struct {
	ID              int64
	EntityID        int64
	AbilityEntityID int64
	ChargesUsed     int
	Notes           string
	Position        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AbilityAttachmentInput struct {
	EntityID        int64
	AbilityEntityID int64
	ChargesUsed     int
	Notes           string
	Position        *int
}

type AbilityAttachmentPatch struct {
	ChargesUsed *int
	Notes       *string
	Position    *int
}

type SearchResult struct {
	Entity  Entity
	Score   float64
	Snippet string
}

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

const (
	defaultPageSize = 25
	maxPageSize     = 500
)

// Normalize clamps a page request to usable bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}
