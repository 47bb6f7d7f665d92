package postgres

import (
	"context"
	"fmt"
	"strings"

	"worldkeep/internal/store"
)

// SearchEntities queries the generated search vector derived from entity
// names and entries. phraseto_tsquery treats the input as one literal
// phrase, so operator syntax in user input never reaches the parser.
func (c *Client) SearchEntities(ctx context.Context, query string, campaignID int64, page store.Page) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []store.SearchResult{}, nil
	}
	page = page.Normalize()

	// Recency breaks rank ties so repeated queries stay deterministic.
	sql := `
	SELECT e.id, e.campaign_id, e.kind, e.name, e.subtype, e.entry, e.image, e.parent_id, e.is_private, e.data, e.created_at, e.updated_at,
	    ts_rank(e.search_vector, phraseto_tsquery('english', $1)) AS score,
	    CASE WHEN e.entry <> '' THEN
	        ts_headline('english', e.entry, phraseto_tsquery('english', $1),
	            'MaxFragments=2, MaxWords=32, MinWords=10, StartSel=**, StopSel=**')
	    ELSE '' END AS snippet
	FROM entities e
	WHERE e.search_vector @@ phraseto_tsquery('english', $1)
	  AND e.campaign_id = $2
	ORDER BY score DESC, e.updated_at DESC, e.id ASC
	LIMIT $3 OFFSET $4`

	rows, err := c.pool.Query(ctx, sql, query, campaignID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("searching entities: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var data []byte
		err := rows.Scan(
			&r.Entity.ID,
			&r.Entity.CampaignID,
			&r.Entity.Kind,
			&r.Entity.Name,
			&r.Entity.Subtype,
			&r.Entity.Entry,
			&r.Entity.Image,
			&r.Entity.ParentID,
			&r.Entity.IsPrivate,
			&data,
			&r.Entity.CreatedAt,
			&r.Entity.UpdatedAt,
			&r.Score,
			&r.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Entity.Data = decodeDoc(data)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}
