package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"worldkeep/internal/store"
)

// SearchEntities queries the FTS index derived from entity names and
// entries. The index is written only by the entity mutation path (insert,
// update and delete triggers), so results can never be stale relative to
// the entities table.
func (c *Client) SearchEntities(ctx context.Context, query string, campaignID int64, page store.Page) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []store.SearchResult{}, nil
	}
	page = page.Normalize()

	// bm25 scores are negative, smaller is better. Recency breaks ties so
	// repeated queries stay deterministic.
	sqlQuery := `
	SELECT e.id, e.campaign_id, e.kind, e.name, e.subtype, e.entry, e.image, e.parent_id, e.is_private, e.data, e.created_at, e.updated_at,
		   bm25(entities_fts, 5.0, 1.0) AS score,
		   snippet(entities_fts, 1, '**', '**', '...', 32) AS snip
	FROM entities_fts
	JOIN entities e ON entities_fts.rowid = e.id
	WHERE entities_fts MATCH ?
	  AND e.campaign_id = ?
	ORDER BY score ASC, e.updated_at DESC, e.id ASC
	LIMIT ? OFFSET ?`

	rows, err := c.db.QueryContext(ctx, sqlQuery, phraseQuery(query), campaignID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var parent sql.NullInt64
		var data []byte
		var created, updated string
		err := rows.Scan(
			&r.Entity.ID,
			&r.Entity.CampaignID,
			&r.Entity.Kind,
			&r.Entity.Name,
			&r.Entity.Subtype,
			&r.Entity.Entry,
			&r.Entity.Image,
			&parent,
			&r.Entity.IsPrivate,
			&data,
			&created,
			&updated,
			&r.Score,
			&r.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if parent.Valid {
			v := parent.Int64
			r.Entity.ParentID = &v
		}
		r.Entity.Data = decodeDoc(data)
		r.Entity.CreatedAt = parseTime(created)
		r.Entity.UpdatedAt = parseTime(updated)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// phraseQuery wraps the raw query in FTS5 string syntax so user input is
// matched as one literal phrase and can never reach the index as operator
// syntax.
func phraseQuery(query string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(query), `"`, `""`) + `"`
}
