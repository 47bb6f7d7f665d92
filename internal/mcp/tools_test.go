package mcp

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"worldkeep/internal/store"
)

type mockStore struct {
	entityResult   *store.Entity
	entityErr      error
	listResult     []store.Entity
	searchResult   []store.SearchResult
	relationResult []store.Relation
	tagResult      []store.Tag
	createdID      int64
	affected       bool

	lastEntityInput   store.EntityInput
	lastGetID         int64
	lastFilter        store.EntityFilter
	lastPage          store.Page
	lastPatchID       int64
	lastPatch         store.EntityPatch
	lastSearchQuery   string
	lastSearchScope   int64
	lastRelationInput store.RelationInput
	lastAttachTagID   int64
	lastAttachEntity  int64
}

func (m *mockStore) CreateEntity(ctx context.Context, in store.EntityInput) (int64, error) {
	m.lastEntityInput = in
	return m.createdID, nil
}

func (m *mockStore) GetEntity(ctx context.Context, id int64) (*store.Entity, error) {
	m.lastGetID = id
	return m.entityResult, m.entityErr
}

func (m *mockStore) ListEntities(ctx context.Context, filter store.EntityFilter, page store.Page) ([]store.Entity, error) {
	m.lastFilter = filter
	m.lastPage = page
	return m.listResult, nil
}

func (m *mockStore) UpdateEntity(ctx context.Context, id int64, patch store.EntityPatch) (bool, error) {
	m.lastPatchID = id
	m.lastPatch = patch
	return m.affected, nil
}

func (m *mockStore) DeleteEntity(ctx context.Context, id int64) (bool, error) {
	return m.affected, nil
}

func (m *mockStore) SearchEntities(ctx context.Context, query string, campaignID int64, page store.Page) ([]store.SearchResult, error) {
	m.lastSearchQuery = query
	m.lastSearchScope = campaignID
	m.lastPage = page
	return m.searchResult, nil
}

func (m *mockStore) CreateRelation(ctx context.Context, in store.RelationInput) (int64, error) {
	m.lastRelationInput = in
	return m.createdID, nil
}

func (m *mockStore) ListRelations(ctx context.Context, entityID int64) ([]store.Relation, error) {
	return m.relationResult, nil
}

func (m *mockStore) DeleteRelation(ctx context.Context, id int64) (bool, error) {
	return m.affected, nil
}

func (m *mockStore) CreateTag(ctx context.Context, in store.TagInput) (int64, error) {
	return m.createdID, nil
}

func (m *mockStore) ListTags(ctx context.Context, campaignID int64) ([]store.Tag, error) {
	return m.tagResult, nil
}

func (m *mockStore) AttachTag(ctx context.Context, tagID, entityID int64) (bool, error) {
	m.lastAttachTagID = tagID
	m.lastAttachEntity = entityID
	return m.affected, nil
}

func (m *mockStore) ListEntityTags(ctx context.Context, entityID int64) ([]store.Tag, error) {
	return m.tagResult, nil
}

func TestCreateEntity(t *testing.T) {
	db := &mockStore{createdID: 7}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleCreateEntity(context.Background(), nil, CreateEntityInput{
		CampaignID: 1,
		Kind:       "character",
		Name:       "Elrond",
		ParentID:   3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.ID != 7 {
		t.Fatalf("unexpected output: %+v", output)
	}
	in := db.lastEntityInput
	if in.CampaignID != 1 || in.Kind != "character" || in.Name != "Elrond" {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.ParentID == nil || *in.ParentID != 3 {
		t.Fatalf("parent not forwarded: %+v", in)
	}
}

func TestCreateEntity_ZeroParentStaysUnset(t *testing.T) {
	db := &mockStore{}
	server := NewServer(db, nil, "test")

	_, _, err := server.handleCreateEntity(context.Background(), nil, CreateEntityInput{
		CampaignID: 1,
		Kind:       "location",
		Name:       "Bree",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.lastEntityInput.ParentID != nil {
		t.Fatalf("parent set without one in the input: %+v", db.lastEntityInput)
	}
}

func TestGetEntity(t *testing.T) {
	parent := int64(2)
	db := &mockStore{
		entityResult: &store.Entity{
			ID:         5,
			CampaignID: 1,
			Kind:       "location",
			Name:       "Rivendell",
			ParentID:   &parent,
		},
		tagResult: []store.Tag{{ID: 1, Name: "elven"}, {ID: 2, Name: "refuge"}},
	}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{ID: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.ID != 5 || output.Name != "Rivendell" || output.ParentID != 2 {
		t.Fatalf("unexpected output: %+v", output)
	}
	if len(output.Tags) != 2 || output.Tags[0] != "elven" || output.Tags[1] != "refuge" {
		t.Fatalf("unexpected tags: %+v", output.Tags)
	}
	if db.lastGetID != 5 {
		t.Fatalf("unexpected id forwarded: %d", db.lastGetID)
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	server := NewServer(&mockStore{}, nil, "test")

	_, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{ID: 99})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestListEntities(t *testing.T) {
	db := &mockStore{
		listResult: []store.Entity{{ID: 1, Name: "Aragorn", Kind: "character"}},
	}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleListEntities(context.Background(), nil, ListEntitiesInput{
		CampaignID: 4,
		Kind:       "character",
		Page:       2,
		PageSize:   10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Entities) != 1 || output.Entities[0].Name != "Aragorn" {
		t.Fatalf("unexpected output: %+v", output)
	}
	if db.lastFilter.CampaignID != 4 || db.lastFilter.Kind != "character" {
		t.Fatalf("unexpected filter: %+v", db.lastFilter)
	}
	if db.lastPage.Number != 2 || db.lastPage.Size != 10 {
		t.Fatalf("unexpected page: %+v", db.lastPage)
	}
}

func TestUpdateEntity(t *testing.T) {
	db := &mockStore{affected: true}
	server := NewServer(db, nil, "test")

	name := "Strider"
	_, output, err := server.handleUpdateEntity(context.Background(), nil, UpdateEntityInput{
		ID:   9,
		Name: &name,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Affected {
		t.Fatalf("unexpected output: %+v", output)
	}
	if db.lastPatchID != 9 {
		t.Fatalf("unexpected id forwarded: %d", db.lastPatchID)
	}
	if db.lastPatch.Name == nil || *db.lastPatch.Name != "Strider" {
		t.Fatalf("name not forwarded: %+v", db.lastPatch)
	}
	if db.lastPatch.Entry != nil || db.lastPatch.Kind != nil {
		t.Fatalf("untouched fields set: %+v", db.lastPatch)
	}
}

func TestSearchEntities(t *testing.T) {
	db := &mockStore{
		searchResult: []store.SearchResult{{
			Entity:  store.Entity{ID: 3, Kind: "location", Name: "Rivendell"},
			Score:   -1.5,
			Snippet: "the **Homely** House",
		}},
	}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{
		Query:      "homely house",
		CampaignID: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Results) != 1 || output.Results[0].Name != "Rivendell" {
		t.Fatalf("unexpected output: %+v", output)
	}
	if output.Results[0].Snippet != "the **Homely** House" {
		t.Fatalf("snippet not forwarded: %+v", output.Results[0])
	}
	if db.lastSearchQuery != "homely house" || db.lastSearchScope != 1 {
		t.Fatalf("unexpected search params")
	}
}

func TestSearchEntities_RequiresQuery(t *testing.T) {
	server := NewServer(&mockStore{}, nil, "test")

	_, _, err := server.handleSearchEntities(context.Background(), nil, SearchEntitiesInput{CampaignID: 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateRelation(t *testing.T) {
	db := &mockStore{createdID: 11}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleCreateRelation(context.Background(), nil, CreateRelationInput{
		SourceID: 1,
		TargetID: 2,
		Type:     "parent_of",
		Mirror:   "child_of",
		Attitude: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.ID != 11 {
		t.Fatalf("unexpected output: %+v", output)
	}
	in := db.lastRelationInput
	if in.SourceID != 1 || in.TargetID != 2 || in.Type != "parent_of" || in.MirrorType != "child_of" || in.Attitude != 40 {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestToolFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	server := NewServer(&mockStore{}, zap.New(core), "test")

	_, _, err := server.handleGetEntity(context.Background(), nil, GetEntityInput{ID: 99})
	if err == nil {
		t.Fatalf("expected error")
	}

	entries := logs.FilterMessage("tool failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tool"] != "get_entity" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestMutationIsLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	server := NewServer(&mockStore{createdID: 7}, zap.New(core), "test")

	_, _, err := server.handleCreateEntity(context.Background(), nil, CreateEntityInput{
		CampaignID: 1,
		Kind:       "character",
		Name:       "Elrond",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("entity created").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["id"] != int64(7) || fields["kind"] != "character" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestAttachTag(t *testing.T) {
	db := &mockStore{affected: true}
	server := NewServer(db, nil, "test")

	_, output, err := server.handleAttachTag(context.Background(), nil, AttachTagInput{TagID: 6, EntityID: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Affected {
		t.Fatalf("unexpected output: %+v", output)
	}
	if db.lastAttachTagID != 6 || db.lastAttachEntity != 8 {
		t.Fatalf("unexpected attach params")
	}
}
