package store

import "strings"

const (
	// Attitude is a signed sentiment score between two entities.
	MinAttitude = -100
	MaxAttitude = 100
)

// ValidateEntityInput checks the required entity fields. Backends call this
// before touching storage.
func ValidateEntityInput(in EntityInput) error {
	fields := map[string]string{}
	if in.CampaignID <= 0 {
		fields["campaign_id"] = "campaign reference is required"
	}
	if !ValidKind(in.Kind) {
		fields["kind"] = "unknown entity kind"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateRelationInput checks a relation before the primary insert. Self
// relations are rejected here so no row is ever written for them.
func ValidateRelationInput(in RelationInput) error {
	fields := map[string]string{}
	if in.SourceID <= 0 {
		fields["source_id"] = "source entity is required"
	}
	if in.TargetID <= 0 {
		fields["target_id"] = "target entity is required"
	}
	if in.SourceID > 0 && in.SourceID == in.TargetID {
		fields["target_id"] = "relation must not point at its own source"
	}
	if strings.TrimSpace(in.Type) == "" {
		fields["type"] = "relation type must not be empty"
	}
	if in.Attitude < MinAttitude || in.Attitude > MaxAttitude {
		fields["attitude"] = "attitude must be between -100 and 100"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateTagInput checks the required tag fields.
func ValidateTagInput(in TagInput) error {
	fields := map[string]string{}
	if in.CampaignID <= 0 {
		fields["campaign_id"] = "campaign reference is required"
	}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name must not be empty"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
