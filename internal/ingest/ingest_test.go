package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"worldkeep/internal/store"
)

type mockStore struct {
	nextID     int64
	campaigns  []store.CampaignInput
	entities   map[int64]store.EntityInput
	patches    map[int64]store.EntityPatch
	relations  []store.RelationInput
	tags       []store.TagInput
	tagLinks   map[int64][]int64
	attributes []store.AttributeInput
	posts      []store.PostInput
	inventory  []store.InventoryItemInput
	abilities  []store.AbilityAttachmentInput
	failEntity string
}

func newMockStore() *mockStore {
	return &mockStore{
		entities: make(map[int64]store.EntityInput),
		patches:  make(map[int64]store.EntityPatch),
		tagLinks: make(map[int64][]int64),
	}
}

func (m *mockStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockStore) CreateCampaign(ctx context.Context, in store.CampaignInput) (int64, error) {
	m.campaigns = append(m.campaigns, in)
	return m.id(), nil
}

func (m *mockStore) CreateEntity(ctx context.Context, in store.EntityInput) (int64, error) {
	if m.failEntity != "" && in.Name == m.failEntity {
		return 0, errors.New("forced error")
	}
	id := m.id()
	m.entities[id] = in
	return id, nil
}

func (m *mockStore) UpdateEntity(ctx context.Context, id int64, patch store.EntityPatch) (bool, error) {
	m.patches[id] = patch
	return true, nil
}

func (m *mockStore) CreateRelation(ctx context.Context, in store.RelationInput) (int64, error) {
	m.relations = append(m.relations, in)
	return m.id(), nil
}

func (m *mockStore) CreateTag(ctx context.Context, in store.TagInput) (int64, error) {
	m.tags = append(m.tags, in)
	return m.id(), nil
}

func (m *mockStore) AttachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	m.tagLinks[entityID] = append(m.tagLinks[entityID], tagID)
	return true, nil
}

func (m *mockStore) CreateAttribute(ctx context.Context, in store.AttributeInput) (int64, error) {
	m.attributes = append(m.attributes, in)
	return m.id(), nil
}

func (m *mockStore) CreatePost(ctx context.Context, in store.PostInput) (int64, error) {
	m.posts = append(m.posts, in)
	return m.id(), nil
}

func (m *mockStore) AddInventoryItem(ctx context.Context, in store.InventoryItemInput) (int64, error) {
	m.inventory = append(m.inventory, in)
	return m.id(), nil
}

func (m *mockStore) AttachAbility(ctx context.Context, in store.AbilityAttachmentInput) (int64, error) {
	m.abilities = append(m.abilities, in)
	return m.id(), nil
}

const seed = `
campaign:
  name: Middle-earth
tags:
  - name: fellowship
entities:
  - name: Eriador
    kind: location
  - name: Rivendell
    kind: location
    parent: Eriador
  - name: Anduril
    kind: item
  - name: Second Wind
    kind: ability
  - name: Aragorn
    kind: character
    subtype: ranger
    entry: Heir of Isildur.
    tags: [fellowship]
    attributes:
      - name: age
        value: "87"
    posts:
      - name: History
        entry: Raised in Rivendell.
    inventory:
      - item: Anduril
    abilities:
      - ability: Second Wind
relations:
  - source: Aragorn
    target: Rivendell
    type: raised_in
    mirror: raised
    attitude: 60
`

func TestRun_FullSeed(t *testing.T) {
	m := newMockStore()

	result, err := Run(context.Background(), m, 0, strings.NewReader(seed))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(m.campaigns) != 1 || m.campaigns[0].Name != "Middle-earth" {
		t.Fatalf("campaign not created: %+v", m.campaigns)
	}
	if result.EntitiesCreated != 5 {
		t.Fatalf("expected 5 entities, got %d", result.EntitiesCreated)
	}
	if result.TagsCreated != 1 {
		t.Fatalf("expected 1 tag, got %d", result.TagsCreated)
	}
	if result.RelationsCreated != 1 {
		t.Fatalf("expected 1 relation, got %d", result.RelationsCreated)
	}

	// Rivendell's parent resolves to Eriador even though names arrive
	// before ids exist.
	var rivendellID, eriadorID int64
	for id, e := range m.entities {
		switch e.Name {
		case "Rivendell":
			rivendellID = id
		case "Eriador":
			eriadorID = id
		}
	}
	patch, ok := m.patches[rivendellID]
	if !ok || patch.ParentID == nil || *patch.ParentID != eriadorID {
		t.Fatalf("parent link not resolved: %+v", patch)
	}

	if len(m.attributes) != 1 || m.attributes[0].Name != "age" {
		t.Fatalf("attributes not imported: %+v", m.attributes)
	}
	if len(m.posts) != 1 || m.posts[0].Name != "History" {
		t.Fatalf("posts not imported: %+v", m.posts)
	}
	if len(m.inventory) != 1 {
		t.Fatalf("inventory not imported: %+v", m.inventory)
	}
	if len(m.abilities) != 1 {
		t.Fatalf("abilities not imported: %+v", m.abilities)
	}
	if len(m.relations) != 1 || m.relations[0].MirrorType != "raised" {
		t.Fatalf("relation not imported: %+v", m.relations)
	}
}

func TestRun_ExistingCampaign(t *testing.T) {
	m := newMockStore()

	result, err := Run(context.Background(), m, 42, strings.NewReader("entities:\n  - name: Moria\n    kind: location\n"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.CampaignID != 42 {
		t.Fatalf("expected campaign 42, got %d", result.CampaignID)
	}
	if len(m.campaigns) != 0 {
		t.Fatalf("seed without campaign block must not create one")
	}
	for _, e := range m.entities {
		if e.CampaignID != 42 {
			t.Fatalf("entity not scoped to campaign: %+v", e)
		}
	}
}

func TestRun_NoCampaignAnywhere(t *testing.T) {
	m := newMockStore()

	if _, err := Run(context.Background(), m, 0, strings.NewReader("entities: []\n")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_CollectsRowErrors(t *testing.T) {
	m := newMockStore()
	m.failEntity = "Rivendell"

	doc := `
entities:
  - name: Rivendell
    kind: location
  - name: Aragorn
    kind: character
    parent: Rivendell
relations:
  - source: Aragorn
    target: Rivendell
    type: raised_in
`
	result, err := Run(context.Background(), m, 7, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.EntitiesCreated != 1 {
		t.Fatalf("expected the surviving entity, got %d", result.EntitiesCreated)
	}
	// Failed entity, unresolvable parent, unresolvable relation target.
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 collected errors, got %v", result.Errors)
	}
}

func TestRun_DuplicateNames(t *testing.T) {
	m := newMockStore()

	doc := `
entities:
  - name: Rivendell
    kind: location
  - name: rivendell
    kind: note
`
	result, err := Run(context.Background(), m, 7, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.EntitiesCreated != 1 {
		t.Fatalf("duplicate name should be skipped, got %d created", result.EntitiesCreated)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
}

func TestRun_BrokenDocument(t *testing.T) {
	m := newMockStore()

	if _, err := Run(context.Background(), m, 7, strings.NewReader("entities: [\n")); err == nil {
		t.Fatalf("expected error")
	}
}
