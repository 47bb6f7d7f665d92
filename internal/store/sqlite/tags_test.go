package sqlite

import (
	"context"
	"testing"

	"worldkeep/internal/store"
)

func TestCreateTag_Validation(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	if _, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "  "}); !store.IsValidation(err) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := c.CreateTag(ctx, store.TagInput{Name: "npc"}); !store.IsValidation(err) {
		t.Fatalf("expected validation error for missing campaign, got %v", err)
	}
}

func TestAttachTag_Idempotent(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	entityID := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")
	tagID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "fellowship"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	attached, err := c.AttachTag(ctx, tagID, entityID)
	if err != nil {
		t.Fatalf("attaching tag: %v", err)
	}
	if !attached {
		t.Fatalf("first attach should report true")
	}

	attached, err = c.AttachTag(ctx, tagID, entityID)
	if err != nil {
		t.Fatalf("re-attaching tag: %v", err)
	}
	if attached {
		t.Fatalf("second attach should report false")
	}

	tags, err := c.ListEntityTags(ctx, entityID)
	if err != nil {
		t.Fatalf("listing entity tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("duplicate attach created extra links: %d", len(tags))
	}
}

func TestDetachTag_Idempotent(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	entityID := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")
	tagID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "fellowship"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := c.AttachTag(ctx, tagID, entityID); err != nil {
		t.Fatalf("attaching tag: %v", err)
	}

	ok, err := c.DetachTag(ctx, tagID, entityID)
	if err != nil || !ok {
		t.Fatalf("detach: ok=%v err=%v", ok, err)
	}

	// Detaching an absent pairing still succeeds.
	ok, err = c.DetachTag(ctx, tagID, entityID)
	if err != nil || !ok {
		t.Fatalf("repeat detach: ok=%v err=%v", ok, err)
	}

	tags, err := c.ListEntityTags(ctx, entityID)
	if err != nil {
		t.Fatalf("listing entity tags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tag still attached: %+v", tags)
	}
}

func TestTagProjections(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	heroID := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")
	placeID := mustEntity(t, c, campaignID, store.KindLocation, "Rivendell")

	fellowshipID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "fellowship"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	elvenID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "elven", Color: "#00ff00"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}

	for _, pair := range []struct{ tag, entity int64 }{
		{fellowshipID, heroID},
		{elvenID, placeID},
		{fellowshipID, placeID},
	} {
		if _, err := c.AttachTag(ctx, pair.tag, pair.entity); err != nil {
			t.Fatalf("attaching tag: %v", err)
		}
	}

	tags, err := c.ListEntityTags(ctx, placeID)
	if err != nil {
		t.Fatalf("listing entity tags: %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "elven" || tags[1].Name != "fellowship" {
		t.Fatalf("unexpected tags for entity: %+v", tags)
	}
	if tags[0].Color != "#00ff00" {
		t.Fatalf("tag color not preserved: %+v", tags[0])
	}

	entities, err := c.ListTagEntities(ctx, fellowshipID)
	if err != nil {
		t.Fatalf("listing tagged entities: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("unexpected tagged entities: %+v", entities)
	}
	// Ordered by kind, then name.
	if entities[0].Name != "Aragorn" || entities[1].Name != "Rivendell" {
		t.Fatalf("unexpected tagged entity order: %+v", entities)
	}

	all, err := c.ListTags(ctx, campaignID)
	if err != nil {
		t.Fatalf("listing tags: %v", err)
	}
	if len(all) != 2 || all[0].Name != "elven" || all[1].Name != "fellowship" {
		t.Fatalf("unexpected campaign tags: %+v", all)
	}
}

func TestDeleteTag_CascadesLinks(t *testing.T) {
	c := testClient(t)
	campaignID := testCampaign(t, c)
	ctx := context.Background()

	entityID := mustEntity(t, c, campaignID, store.KindCharacter, "Aragorn")
	tagID, err := c.CreateTag(ctx, store.TagInput{CampaignID: campaignID, Name: "fellowship"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := c.AttachTag(ctx, tagID, entityID); err != nil {
		t.Fatalf("attaching tag: %v", err)
	}

	if _, err := c.db.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, tagID); err != nil {
		t.Fatalf("deleting tag: %v", err)
	}

	tags, err := c.ListEntityTags(ctx, entityID)
	if err != nil {
		t.Fatalf("listing entity tags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("tag links survived tag deletion: %+v", tags)
	}
}
