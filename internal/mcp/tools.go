package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"worldkeep/internal/store"
)

type CreateEntityInput struct {
	CampaignID int64          `json:"campaign_id" jsonschema:"campaign the entity belongs to"`
	Kind       string         `json:"kind" jsonschema:"entity kind, e.g. character or location"`
	Name       string         `json:"name" jsonschema:"entity name"`
	Subtype    string         `json:"subtype,omitempty" jsonschema:"free-form subtype"`
	Entry      string         `json:"entry,omitempty" jsonschema:"main descriptive text"`
	ParentID   int64          `json:"parent_id,omitempty" jsonschema:"optional parent entity id"`
	Private    bool           `json:"private,omitempty" jsonschema:"hide from players"`
	Data       map[string]any `json:"data,omitempty" jsonschema:"structured extra fields"`
}

type GetEntityInput struct {
	ID int64 `json:"id" jsonschema:"entity id"`
}

type ListEntitiesInput struct {
	CampaignID int64  `json:"campaign_id,omitempty" jsonschema:"campaign filter"`
	Kind       string `json:"kind,omitempty" jsonschema:"entity kind filter"`
	Page       int    `json:"page,omitempty" jsonschema:"1-indexed page number"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"results per page"`
}

type UpdateEntityInput struct {
	ID      int64          `json:"id" jsonschema:"entity id"`
	Name    *string        `json:"name,omitempty" jsonschema:"new name"`
	Kind    *string        `json:"kind,omitempty" jsonschema:"new kind"`
	Subtype *string        `json:"subtype,omitempty" jsonschema:"new subtype"`
	Entry   *string        `json:"entry,omitempty" jsonschema:"new entry text"`
	Private *bool          `json:"private,omitempty" jsonschema:"new privacy flag"`
	Data    map[string]any `json:"data,omitempty" jsonschema:"replacement structured fields"`
}

type DeleteEntityInput struct {
	ID int64 `json:"id" jsonschema:"entity id"`
}

type SearchEntitiesInput struct {
	Query      string `json:"query" jsonschema:"literal search phrase"`
	CampaignID int64  `json:"campaign_id" jsonschema:"campaign to search in"`
	Page       int    `json:"page,omitempty" jsonschema:"1-indexed page number"`
	PageSize   int    `json:"page_size,omitempty" jsonschema:"results per page"`
}

type CreateRelationInput struct {
	SourceID int64  `json:"source_id" jsonschema:"source entity id"`
	TargetID int64  `json:"target_id" jsonschema:"target entity id"`
	Type     string `json:"type" jsonschema:"relation type, e.g. parent_of"`
	Mirror   string `json:"mirror,omitempty" jsonschema:"mirror type for the reverse edge"`
	Attitude int    `json:"attitude,omitempty" jsonschema:"attitude from -100 to 100"`
}

type ListRelationsInput struct {
	EntityID int64 `json:"entity_id" jsonschema:"entity whose relations to list"`
}

type DeleteRelationInput struct {
	ID int64 `json:"id" jsonschema:"relation id"`
}

type AttachTagInput struct {
	TagID    int64 `json:"tag_id" jsonschema:"tag id"`
	EntityID int64 `json:"entity_id" jsonschema:"entity id"`
}

type EntityOutput struct {
	ID         int64          `json:"id"`
	CampaignID int64          `json:"campaign_id"`
	Kind       string         `json:"kind"`
	Name       string         `json:"name"`
	Subtype    string         `json:"subtype,omitempty"`
	Entry      string         `json:"entry,omitempty"`
	ParentID   int64          `json:"parent_id,omitempty"`
	Private    bool           `json:"private,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
}

type CreatedOutput struct {
	ID int64 `json:"id"`
}

type AffectedOutput struct {
	Affected bool `json:"affected"`
}

type ListEntitiesOutput struct {
	Entities []EntityOutput `json:"entities"`
}

type SearchResultOutput struct {
	ID      int64   `json:"id"`
	Kind    string  `json:"kind"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
}

type SearchEntitiesOutput struct {
	Results []SearchResultOutput `json:"results"`
}

type RelationOutput struct {
	ID       int64  `json:"id"`
	SourceID int64  `json:"source_id"`
	TargetID int64  `json:"target_id"`
	Type     string `json:"type"`
	Mirror   string `json:"mirror,omitempty"`
	Attitude int    `json:"attitude,omitempty"`
}

type ListRelationsOutput struct {
	Relations []RelationOutput `json:"relations"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_entity",
		Description: "Create a world entity such as a character, location, or item",
	}, s.handleCreateEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entity",
		Description: "Retrieve one entity with its data and tags",
	}, s.handleGetEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entities",
		Description: "List entities with optional campaign and kind filters",
	}, s.handleListEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_entity",
		Description: "Apply a sparse update to an entity",
	}, s.handleUpdateEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_entity",
		Description: "Delete an entity and everything attached to it",
	}, s.handleDeleteEntity)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_entities",
		Description: "Full-text search over entity names and entries",
	}, s.handleSearchEntities)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_relation",
		Description: "Link two entities, optionally with a mirrored reverse edge",
	}, s.handleCreateRelation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_relations",
		Description: "List every relation touching an entity",
	}, s.handleListRelations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "delete_relation",
		Description: "Delete a relation and its mirror edge",
	}, s.handleDeleteRelation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "attach_tag",
		Description: "Attach an existing tag to an entity",
	}, s.handleAttachTag)
}

func (s *Server) handleCreateEntity(ctx context.Context, req *sdk.CallToolRequest, input CreateEntityInput) (*sdk.CallToolResult, CreatedOutput, error) {
	in := store.EntityInput{
		CampaignID: input.CampaignID,
		Kind:       input.Kind,
		Name:       input.Name,
		Subtype:    input.Subtype,
		Entry:      input.Entry,
		IsPrivate:  input.Private,
		Data:       input.Data,
	}
	if input.ParentID != 0 {
		in.ParentID = &input.ParentID
	}

	id, err := s.db.CreateEntity(ctx, in)
	if err != nil {
		return nil, CreatedOutput{}, s.toolErr("create_entity", err)
	}
	s.log.Info("entity created", zap.Int64("id", id), zap.String("kind", input.Kind))
	return nil, CreatedOutput{ID: id}, nil
}

func (s *Server) handleGetEntity(ctx context.Context, req *sdk.CallToolRequest, input GetEntityInput) (*sdk.CallToolResult, EntityOutput, error) {
	entity, err := s.db.GetEntity(ctx, input.ID)
	if err != nil {
		return nil, EntityOutput{}, s.toolErr("get_entity", err)
	}
	if entity == nil {
		return nil, EntityOutput{}, s.toolErr("get_entity", fmt.Errorf("entity %d not found", input.ID))
	}

	tags, err := s.db.ListEntityTags(ctx, entity.ID)
	if err != nil {
		return nil, EntityOutput{}, s.toolErr("get_entity", err)
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}

	out := entityOutput(*entity)
	out.Tags = names
	return nil, out, nil
}

func (s *Server) handleListEntities(ctx context.Context, req *sdk.CallToolRequest, input ListEntitiesInput) (*sdk.CallToolResult, ListEntitiesOutput, error) {
	entities, err := s.db.ListEntities(ctx,
		store.EntityFilter{CampaignID: input.CampaignID, Kind: input.Kind},
		store.Page{Number: input.Page, Size: input.PageSize})
	if err != nil {
		return nil, ListEntitiesOutput{}, s.toolErr("list_entities", err)
	}

	output := make([]EntityOutput, 0, len(entities))
	for _, e := range entities {
		output = append(output, entityOutput(e))
	}
	return nil, ListEntitiesOutput{Entities: output}, nil
}

func (s *Server) handleUpdateEntity(ctx context.Context, req *sdk.CallToolRequest, input UpdateEntityInput) (*sdk.CallToolResult, AffectedOutput, error) {
	ok, err := s.db.UpdateEntity(ctx, input.ID, store.EntityPatch{
		Name:      input.Name,
		Kind:      input.Kind,
		Subtype:   input.Subtype,
		Entry:     input.Entry,
		IsPrivate: input.Private,
		Data:      input.Data,
	})
	if err != nil {
		return nil, AffectedOutput{}, s.toolErr("update_entity", err)
	}
	s.log.Info("entity updated", zap.Int64("id", input.ID), zap.Bool("affected", ok))
	return nil, AffectedOutput{Affected: ok}, nil
}

func (s *Server) handleDeleteEntity(ctx context.Context, req *sdk.CallToolRequest, input DeleteEntityInput) (*sdk.CallToolResult, AffectedOutput, error) {
	ok, err := s.db.DeleteEntity(ctx, input.ID)
	if err != nil {
		return nil, AffectedOutput{}, s.toolErr("delete_entity", err)
	}
	s.log.Info("entity deleted", zap.Int64("id", input.ID), zap.Bool("affected", ok))
	return nil, AffectedOutput{Affected: ok}, nil
}

func (s *Server) handleSearchEntities(ctx context.Context, req *sdk.CallToolRequest, input SearchEntitiesInput) (*sdk.CallToolResult, SearchEntitiesOutput, error) {
	if input.Query == "" {
		return nil, SearchEntitiesOutput{}, s.toolErr("search_entities", fmt.Errorf("query is required"))
	}
	results, err := s.db.SearchEntities(ctx, input.Query, input.CampaignID,
		store.Page{Number: input.Page, Size: input.PageSize})
	if err != nil {
		return nil, SearchEntitiesOutput{}, s.toolErr("search_entities", err)
	}

	output := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		output = append(output, SearchResultOutput{
			ID:      r.Entity.ID,
			Kind:    r.Entity.Kind,
			Name:    r.Entity.Name,
			Score:   r.Score,
			Snippet: r.Snippet,
		})
	}
	return nil, SearchEntitiesOutput{Results: output}, nil
}

func (s *Server) handleCreateRelation(ctx context.Context, req *sdk.CallToolRequest, input CreateRelationInput) (*sdk.CallToolResult, CreatedOutput, error) {
	id, err := s.db.CreateRelation(ctx, store.RelationInput{
		SourceID:   input.SourceID,
		TargetID:   input.TargetID,
		Type:       input.Type,
		MirrorType: input.Mirror,
		Attitude:   input.Attitude,
	})
	if err != nil {
		return nil, CreatedOutput{}, s.toolErr("create_relation", err)
	}
	s.log.Info("relation created", zap.Int64("id", id),
		zap.Int64("source", input.SourceID), zap.Int64("target", input.TargetID))
	return nil, CreatedOutput{ID: id}, nil
}

func (s *Server) handleListRelations(ctx context.Context, req *sdk.CallToolRequest, input ListRelationsInput) (*sdk.CallToolResult, ListRelationsOutput, error) {
	relations, err := s.db.ListRelations(ctx, input.EntityID)
	if err != nil {
		return nil, ListRelationsOutput{}, s.toolErr("list_relations", err)
	}

	output := make([]RelationOutput, 0, len(relations))
	for _, r := range relations {
		output = append(output, RelationOutput{
			ID:       r.ID,
			SourceID: r.SourceID,
			TargetID: r.TargetID,
			Type:     r.Type,
			Mirror:   r.MirrorType,
			Attitude: r.Attitude,
		})
	}
	return nil, ListRelationsOutput{Relations: output}, nil
}

func (s *Server) handleDeleteRelation(ctx context.Context, req *sdk.CallToolRequest, input DeleteRelationInput) (*sdk.CallToolResult, AffectedOutput, error) {
	ok, err := s.db.DeleteRelation(ctx, input.ID)
	if err != nil {
		return nil, AffectedOutput{}, s.toolErr("delete_relation", err)
	}
	s.log.Info("relation deleted", zap.Int64("id", input.ID), zap.Bool("affected", ok))
	return nil, AffectedOutput{Affected: ok}, nil
}

func (s *Server) handleAttachTag(ctx context.Context, req *sdk.CallToolRequest, input AttachTagInput) (*sdk.CallToolResult, AffectedOutput, error) {
	ok, err := s.db.AttachTag(ctx, input.TagID, input.EntityID)
	if err != nil {
		return nil, AffectedOutput{}, s.toolErr("attach_tag", err)
	}
	s.log.Info("tag attached", zap.Int64("tag", input.TagID),
		zap.Int64("entity", input.EntityID), zap.Bool("affected", ok))
	return nil, AffectedOutput{Affected: ok}, nil
}

// toolErr logs a failed tool call before handing the error back to the
// protocol layer, which is otherwise the only place it surfaces.
func (s *Server) toolErr(tool string, err error) error {
	s.log.Error("tool failed", zap.String("tool", tool), zap.Error(err))
	return err
}

func entityOutput(e store.Entity) EntityOutput {
	out := EntityOutput{
		ID:         e.ID,
		CampaignID: e.CampaignID,
		Kind:       e.Kind,
		Name:       e.Name,
		Subtype:    e.Subtype,
		Entry:      e.Entry,
		Private:    e.IsPrivate,
		Data:       e.Data,
	}
	if e.ParentID != nil {
		out.ParentID = *e.ParentID
	}
	return out
}
