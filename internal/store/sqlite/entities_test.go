package sqlite

import (
	"context"
	"testing"
	"time"

	"worldkeep/internal/store"
)

func TestCreateEntity_Validation(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	tests := []struct {
		name  string
		input store.EntityInput
	}{
		{
			name:  "missing campaign",
			input: store.EntityInput{Kind: store.KindCharacter, Name: "Aragorn"},
		},
		{
			name:  "missing kind",
			input: store.EntityInput{CampaignID: campaignID, Name: "Aragorn"},
		},
		{
			name:  "unknown kind",
			input: store.EntityInput{CampaignID: campaignID, Kind: "spaceship", Name: "Aragorn"},
		},
		{
			name:  "blank name",
			input: store.EntityInput{CampaignID: campaignID, Kind: store.KindCharacter, Name: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateEntity(ctx, tt.input)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !store.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetEntity_DataDefaults(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	id := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")

	e, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if e == nil {
		t.Fatalf("entity not found")
	}
	if e.Data == nil || len(e.Data) != 0 {
		t.Fatalf("expected empty data document, got %#v", e.Data)
	}
}

func TestGetEntity_MalformedDataDecodesEmpty(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	id, err := c.CreateEntity(ctx, store.EntityInput{
		CampaignID: campaignID,
		Kind:       store.KindNote,
		Name:       "Corrupt",
		RawData:    "{this is not json",
	})
	if err != nil {
		t.Fatalf("creating entity: %v", err)
	}

	e, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if len(e.Data) != 0 {
		t.Fatalf("expected empty data for malformed payload, got %#v", e.Data)
	}
}

func TestGetEntity_Missing(t *testing.T) {
	c := testClient(t)

	e, err := c.GetEntity(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil entity, got %+v", e)
	}
}

func TestUpdateEntity_SparsePatch(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	id, err := c.CreateEntity(ctx, store.EntityInput{
		CampaignID: campaignID,
		Kind:       store.KindCharacter,
		Name:       "Aragorn",
		Subtype:    "ranger",
		Entry:      "Heir of Isildur.",
	})
	if err != nil {
		t.Fatalf("creating entity: %v", err)
	}

	before, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	ok, err := c.UpdateEntity(ctx, id, store.EntityPatch{Entry: strPtr("King of Gondor.")})
	if err != nil {
		t.Fatalf("updating entity: %v", err)
	}
	if !ok {
		t.Fatalf("expected update to report true")
	}

	after, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if after.Name != "Aragorn" || after.Kind != store.KindCharacter || after.Subtype != "ranger" {
		t.Fatalf("untouched fields changed: %+v", after)
	}
	if after.Entry != "King of Gondor." {
		t.Fatalf("entry not updated: %q", after.Entry)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("modification timestamp not refreshed")
	}
}

func TestUpdateEntity_EmptyPatchRefreshesTimestamp(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	id := mustEntity(t, c, campaignID, store.KindLocation, "Rivendell")

	before, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	ok, err := c.UpdateEntity(ctx, id, store.EntityPatch{})
	if err != nil || !ok {
		t.Fatalf("empty patch: ok=%v err=%v", ok, err)
	}

	after, err := c.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("empty patch must still refresh the modification timestamp")
	}
}

func TestUpdateEntity_Missing(t *testing.T) {
	c := testClient(t)

	ok, err := c.UpdateEntity(context.Background(), 424242, store.EntityPatch{Name: strPtr("Ghost")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for missing id")
	}
}

func TestUpdateEntity_ParentAndClear(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	parentID := mustEntity(t, c, campaignID, store.KindLocation, "Eriador")
	childID := mustEntity(t, c, campaignID, store.KindLocation, "Rivendell")

	if _, err := c.UpdateEntity(ctx, childID, store.EntityPatch{ParentID: &parentID}); err != nil {
		t.Fatalf("setting parent: %v", err)
	}
	child, err := c.GetEntity(ctx, childID)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != parentID {
		t.Fatalf("parent not set: %+v", child.ParentID)
	}

	if _, err := c.UpdateEntity(ctx, childID, store.EntityPatch{ClearParent: true}); err != nil {
		t.Fatalf("clearing parent: %v", err)
	}
	child, err = c.GetEntity(ctx, childID)
	if err != nil {
		t.Fatalf("getting entity: %v", err)
	}
	if child.ParentID != nil {
		t.Fatalf("parent not cleared: %+v", child.ParentID)
	}
}

func TestListEntities_OrderingAndPaging(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	mustEntity(t, c, campaignID, store.KindLocation, "Rivendell")
	mustEntity(t, c, campaignID, store.KindCharacter, "Boromir")
	mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")

	all, err := c.ListEntities(ctx, store.EntityFilter{CampaignID: campaignID}, store.Page{})
	if err != nil {
		t.Fatalf("listing entities: %v", err)
	}
	got := make([]string, 0, len(all))
	for _, e := range all {
		got = append(got, e.Name)
	}
	want := []string{"Aragorn", "Boromir", "Rivendell"}
	if len(got) != len(want) {
		t.Fatalf("unexpected listing: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v, want %v", got, want)
		}
	}

	page2, err := c.ListEntities(ctx,
		store.EntityFilter{CampaignID: campaignID, Kind: store.KindCharacter},
		store.Page{Number: 2, Size: 1})
	if err != nil {
		t.Fatalf("listing page: %v", err)
	}
	if len(page2) != 1 || page2[0].Name != "Boromir" {
		t.Fatalf("unexpected second page: %+v", page2)
	}
}

func TestListEntities_ByParent(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	parentID := mustEntity(t, c, campaignID, store.KindLocation, "Eriador")
	childID, err := c.CreateEntity(ctx, store.EntityInput{
		CampaignID: campaignID,
		Kind:       store.KindLocation,
		Name:       "Rivendell",
		ParentID:   &parentID,
	})
	if err != nil {
		t.Fatalf("creating child: %v", err)
	}
	mustEntity(t, c, campaignID, store.KindLocation, "Moria")

	children, err := c.ListEntities(ctx,
		store.EntityFilter{CampaignID: campaignID, ParentID: &parentID}, store.Page{})
	if err != nil {
		t.Fatalf("listing children: %v", err)
	}
	if len(children) != 1 || children[0].ID != childID {
		t.Fatalf("unexpected children: %+v", children)
	}
}

func TestDeleteEntity_Missing(t *testing.T) {
	c := testClient(t)

	ok, err := c.DeleteEntity(context.Background(), 31337)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected false for missing id")
	}
}

func TestDeleteEntity_CascadesEverywhere(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	heroID := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")
	placeID := mustEntity(t, c, campaignID, store.KindLocation, "Rivendell")
	swordID := mustEntity(t, c, campaignID, store.KindItem, "Anduril")
	abilityID := mustEntity(t, c, campaignID, store.KindAbility, "Second Wind")

	if _, err := c.CreateAttribute(ctx, store.AttributeInput{EntityID: heroID, Name: "age", Value: "87"}); err != nil {
		t.Fatalf("creating attribute: %v", err)
	}
	if _, err := c.CreatePost(ctx, store.PostInput{EntityID: heroID, Name: "History"}); err != nil {
		t.Fatalf("creating post: %v", err)
	}
	if _, err := c.AddInventoryItem(ctx, store.InventoryItemInput{EntityID: heroID, ItemEntityID: swordID}); err != nil {
		t.Fatalf("adding inventory: %v", err)
	}
	if _, err := c.AttachAbility(ctx, store.AbilityAttachmentInput{EntityID: heroID, AbilityEntityID: abilityID}); err != nil {
		t.Fatalf("attaching ability: %v", err)
	}
	tagID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "fellowship"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := c.AttachTag(ctx, tagID, heroID); err != nil {
		t.Fatalf("attaching tag: %v", err)
	}
	if _, err := c.CreateRelation(ctx, store.RelationInput{
		SourceID:   heroID,
		TargetID:   placeID,
		Type:       "visited",
		MirrorType: "visited_by",
		Attitude:   5,
	}); err != nil {
		t.Fatalf("creating relation: %v", err)
	}

	ok, err := c.DeleteEntity(ctx, heroID)
	if err != nil {
		t.Fatalf("deleting entity: %v", err)
	}
	if !ok {
		t.Fatalf("expected delete to report true")
	}

	if e, _ := c.GetEntity(ctx, heroID); e != nil {
		t.Fatalf("entity still present")
	}
	if rels, _ := c.ListRelations(ctx, placeID); len(rels) != 0 {
		t.Fatalf("relations not cascaded: %+v", rels)
	}
	if attrs, _ := c.ListAttributes(ctx, heroID); len(attrs) != 0 {
		t.Fatalf("attributes not cascaded")
	}
	if posts, _ := c.ListPosts(ctx, heroID); len(posts) != 0 {
		t.Fatalf("posts not cascaded")
	}
	if items, _ := c.ListInventory(ctx, heroID); len(items) != 0 {
		t.Fatalf("inventory not cascaded")
	}
	if abilities, _ := c.ListAbilities(ctx, heroID); len(abilities) != 0 {
		t.Fatalf("abilities not cascaded")
	}
	if tags, _ := c.ListEntityTags(ctx, heroID); len(tags) != 0 {
		t.Fatalf("tag links not cascaded")
	}
	results, err := c.SearchEntities(ctx, "Aragorn", campaignID, store.Page{})
	if err != nil {
		t.Fatalf("searching: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("search index entry not removed: %+v", results)
	}

	// The tag itself survives; only the link is gone.
	tags, err := c.ListTags(ctx, campaignID)
	if err != nil {
		t.Fatalf("listing tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("tag should survive entity deletion")
	}
}

func TestDeleteEntity_ChildParentCleared(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	parentID := mustEntity(t, c, campaignID, store.KindLocation, "Eriador")
	childID, err := c.CreateEntity(ctx, store.EntityInput{
		CampaignID: campaignID,
		Kind:       store.KindLocation,
		Name:       "Rivendell",
		ParentID:   &parentID,
	})
	if err != nil {
		t.Fatalf("creating child: %v", err)
	}

	if _, err := c.DeleteEntity(ctx, parentID); err != nil {
		t.Fatalf("deleting parent: %v", err)
	}

	child, err := c.GetEntity(ctx, childID)
	if err != nil {
		t.Fatalf("getting child: %v", err)
	}
	if child == nil {
		t.Fatalf("child should survive parent deletion")
	}
	if child.ParentID != nil {
		t.Fatalf("child parent reference should be cleared, got %v", *child.ParentID)
	}
}
