package validate

import (
	"context"
	"fmt"
	"strings"

	"worldkeep/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeOrphanedMirror       = "orphaned_mirror"
	codeDanglingParent       = "dangling_parent"
	codeParentCycle          = "parent_cycle"
	codeNonAbilityAttachment = "non_ability_attachment"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	EntityID int64
}

type Report struct {
	Issues []Issue
}

// Run checks a campaign (or everything, with campaignID 0) for the
// inconsistencies the store tolerates at write time: mirror pairs that
// lost a side, parent references pointing nowhere, parent chains that
// loop, and ability attachments pointing at non-ability entities.
func Run(ctx context.Context, db StoreValidator, campaignID int64) (*Report, error) {
	if db == nil {
		return nil, fmt.Errorf("store is required")
	}

	issues := make([]Issue, 0)

	orphans, err := db.ListOrphanedMirrors(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list orphaned mirrors: %w", err)
	}
	for _, r := range orphans {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeOrphanedMirror,
			Message:  fmt.Sprintf("relation %d (%s) declares mirror %q but has no companion edge", r.ID, r.Type, r.MirrorType),
			EntityID: r.SourceID,
		})
	}

	parents, names, err := loadParents(ctx, db, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}

	dangling, err := findDanglingParents(ctx, db, parents, names)
	if err != nil {
		return nil, fmt.Errorf("find dangling parents: %w", err)
	}
	issues = append(issues, dangling...)

	issues = append(issues, findParentCycles(parents, names)...)

	attachments, err := db.ListNonAbilityAttachments(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list non-ability attachments: %w", err)
	}
	for _, a := range attachments {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeNonAbilityAttachment,
			Message:  fmt.Sprintf("attachment %d references entity %d which is not an ability", a.ID, a.AbilityEntityID),
			EntityID: a.EntityID,
		})
	}

	return &Report{Issues: issues}, nil
}

// loadParents pages through every entity in scope and collects the parent
// links and names the chain checks walk.
func loadParents(ctx context.Context, db StoreValidator, campaignID int64) (map[int64]int64, map[int64]string, error) {
	parents := make(map[int64]int64)
	names := make(map[int64]string)

	page := store.Page{Number: 1, Size: 500}
	for {
		entities, err := db.ListEntities(ctx, store.EntityFilter{CampaignID: campaignID}, page)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range entities {
			names[e.ID] = e.Name
			if e.ParentID != nil {
				parents[e.ID] = *e.ParentID
			}
		}
		if len(entities) < page.Size {
			break
		}
		page.Number++
	}

	return parents, names, nil
}

// findDanglingParents reports parent references whose target entity does
// not exist. A parent outside the listed scope (another campaign) is
// resolved through GetEntity before being flagged, so scoped runs do not
// produce false positives.
func findDanglingParents(ctx context.Context, db StoreValidator, parents map[int64]int64, names map[int64]string) ([]Issue, error) {
	exists := make(map[int64]bool)

	var issues []Issue
	for id, parentID := range parents {
		if _, ok := names[parentID]; ok {
			continue
		}
		resolved, ok := exists[parentID]
		if !ok {
			entity, err := db.GetEntity(ctx, parentID)
			if err != nil {
				return nil, err
			}
			resolved = entity != nil
			exists[parentID] = resolved
		}
		if resolved {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDanglingParent,
			Message:  fmt.Sprintf("entity %s references parent %d which does not exist", describeEntity(id, names), parentID),
			EntityID: id,
		})
	}

	return issues, nil
}

// findParentCycles walks every parent chain. The store does not prevent
// cycles at write time, so the checker reports each entity sitting on one.
func findParentCycles(parents map[int64]int64, names map[int64]string) []Issue {
	var issues []Issue
	reported := make(map[int64]bool)

	for id := range parents {
		if reported[id] {
			continue
		}
		seen := map[int64]bool{id: true}
		path := []int64{id}
		current := id
		for {
			next, ok := parents[current]
			if !ok {
				break
			}
			if seen[next] {
				// Everything on the walk from the loop entry onward is
				// part of or feeds into the cycle.
				for _, member := range path {
					if reported[member] {
						continue
					}
					reported[member] = true
					issues = append(issues, Issue{
						Severity: SeverityError,
						Code:     codeParentCycle,
						Message:  fmt.Sprintf("parent chain of %s loops: %s", names[member], describeCycle(path, names)),
						EntityID: member,
					})
				}
				break
			}
			seen[next] = true
			path = append(path, next)
			current = next
		}
	}

	return issues
}

func describeCycle(path []int64, names map[int64]string) string {
	parts := make([]string, 0, len(path))
	for _, id := range path {
		parts = append(parts, describeEntity(id, names))
	}
	return strings.Join(parts, " -> ")
}

func describeEntity(id int64, names map[int64]string) string {
	if name := names[id]; name != "" {
		return name
	}
	return fmt.Sprintf("#%d", id)
}
