package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"worldkeep/internal/store"
)

type Result struct {
	CampaignID       int64
	TagsCreated      int
	EntitiesCreated  int
	RelationsCreated int
	Errors           []error
}

// Run imports a YAML seed document. Entities are created in two passes so
// a child can name a parent that appears later in the file. Row-level
// failures are collected in the result; only a broken document or an
// unresolvable campaign aborts the run.
func Run(ctx context.Context, db Store, campaignID int64, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading seed document: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed document: %w", err)
	}

	result := &Result{}

	if campaignID == 0 {
		if doc.Campaign == nil {
			return nil, fmt.Errorf("no campaign given and seed declares none")
		}
		campaignID, err = db.CreateCampaign(ctx, store.CampaignInput{
			Name:     doc.Campaign.Name,
			Settings: doc.Campaign.Settings,
		})
		if err != nil {
			return nil, fmt.Errorf("creating campaign: %w", err)
		}
	}
	result.CampaignID = campaignID

	tagIDs := make(map[string]int64)
	for _, t := range doc.Tags {
		id, err := db.CreateTag(ctx, store.TagInput{
			CampaignID:  campaignID,
			Name:        t.Name,
			Color:       t.Color,
			Description: t.Description,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("creating tag %q: %w", t.Name, err))
			continue
		}
		tagIDs[strings.ToLower(t.Name)] = id
		result.TagsCreated++
	}

	// First pass: create every entity without its parent link.
	entityIDs := make(map[string]int64)
	created := make([]int, 0, len(doc.Entities))
	for i, e := range doc.Entities {
		key := strings.ToLower(e.Name)
		if _, exists := entityIDs[key]; exists {
			result.Errors = append(result.Errors, fmt.Errorf("duplicate entity name %q", e.Name))
			continue
		}
		id, err := db.CreateEntity(ctx, store.EntityInput{
			CampaignID: campaignID,
			Kind:       e.Kind,
			Name:       e.Name,
			Subtype:    e.Subtype,
			Entry:      e.Entry,
			Image:      e.Image,
			IsPrivate:  e.Private,
			Data:       e.Data,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("creating entity %q: %w", e.Name, err))
			continue
		}
		entityIDs[key] = id
		created = append(created, i)
		result.EntitiesCreated++
	}

	// Second pass: parent links, satellites and tag attachments.
	for _, i := range created {
		e := doc.Entities[i]
		id := entityIDs[strings.ToLower(e.Name)]

		if e.Parent != "" {
			parentID, ok := entityIDs[strings.ToLower(e.Parent)]
			if !ok {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: unknown parent %q", e.Name, e.Parent))
			} else if _, err := db.UpdateEntity(ctx, id, store.EntityPatch{ParentID: &parentID}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: setting parent: %w", e.Name, err))
			}
		}

		for _, a := range e.Attributes {
			if _, err := db.CreateAttribute(ctx, store.AttributeInput{
				EntityID: id, Name: a.Name, Value: a.Value,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: attribute %q: %w", e.Name, a.Name, err))
			}
		}
		for _, p := range e.Posts {
			if _, err := db.CreatePost(ctx, store.PostInput{
				EntityID: id, Name: p.Name, Entry: p.Entry, IsPrivate: p.Private,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: post %q: %w", e.Name, p.Name, err))
			}
		}
		for _, item := range e.Inventory {
			itemID, ok := entityIDs[strings.ToLower(item.Item)]
			if !ok {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: unknown inventory item %q", e.Name, item.Item))
				continue
			}
			if _, err := db.AddInventoryItem(ctx, store.InventoryItemInput{
				EntityID: id, ItemEntityID: itemID, Quantity: item.Quantity, Description: item.Description,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: inventory %q: %w", e.Name, item.Item, err))
			}
		}
		for _, ab := range e.Abilities {
			abilityID, ok := entityIDs[strings.ToLower(ab.Ability)]
			if !ok {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: unknown ability %q", e.Name, ab.Ability))
				continue
			}
			if _, err := db.AttachAbility(ctx, store.AbilityAttachmentInput{
				EntityID: id, AbilityEntityID: abilityID, ChargesUsed: ab.ChargesUsed, Notes: ab.Notes,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: ability %q: %w", e.Name, ab.Ability, err))
			}
		}
		for _, name := range e.Tags {
			tagID, ok := tagIDs[strings.ToLower(name)]
			if !ok {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: unknown tag %q", e.Name, name))
				continue
			}
			if _, err := db.AttachTag(ctx, tagID, id); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("entity %q: tag %q: %w", e.Name, name, err))
			}
		}
	}

	for _, rel := range doc.Relations {
		sourceID, ok := entityIDs[strings.ToLower(rel.Source)]
		if !ok {
			result.Errors = append(result.Errors, fmt.Errorf("relation %q -> %q: unknown source", rel.Source, rel.Target))
			continue
		}
		targetID, ok := entityIDs[strings.ToLower(rel.Target)]
		if !ok {
			result.Errors = append(result.Errors, fmt.Errorf("relation %q -> %q: unknown target", rel.Source, rel.Target))
			continue
		}
		if _, err := db.CreateRelation(ctx, store.RelationInput{
			SourceID:   sourceID,
			TargetID:   targetID,
			Type:       rel.Type,
			MirrorType: rel.Mirror,
			Attitude:   rel.Attitude,
			IsPrivate:  rel.Private,
		}); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("relation %q -> %q: %w", rel.Source, rel.Target, err))
			continue
		}
		result.RelationsCreated++
	}

	return result, nil
}
