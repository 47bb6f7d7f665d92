package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema creates the full schema in one call, which PostgreSQL runs
// atomically within an implicit transaction. IF NOT EXISTS keeps it
// idempotent. The search vector is a stored generated column, so the index
// can never lag behind the row it was derived from.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS campaigns (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL,
    settings   JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS entities (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    campaign_id BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    kind        TEXT NOT NULL,
    name        TEXT NOT NULL,
    subtype     TEXT NOT NULL DEFAULT '',
    entry       TEXT NOT NULL DEFAULT '',
    image       TEXT NOT NULL DEFAULT '',
    parent_id   BIGINT REFERENCES entities(id) ON DELETE SET NULL,
    is_private  BOOLEAN NOT NULL DEFAULT FALSE,
    data        JSONB NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    search_vector TSVECTOR GENERATED ALWAYS AS (
        setweight(to_tsvector('english', coalesce(name, '')), 'A') ||
        setweight(to_tsvector('english', coalesce(entry, '')), 'B')
    ) STORED
);

CREATE TABLE IF NOT EXISTS relations (
    id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    campaign_id   BIGINT NOT NULL,
    source_id     BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    target_id     BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    relation_type TEXT NOT NULL,
    mirror_type   TEXT NOT NULL DEFAULT '',
    attitude      INTEGER NOT NULL DEFAULT 0,
    is_private    BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (source_id <> target_id)
);

CREATE TABLE IF NOT EXISTS tags (
    id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    campaign_id BIGINT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    color       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS entity_tags (
    entity_id  BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    tag_id     BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (entity_id, tag_id)
);

CREATE TABLE IF NOT EXISTS attributes (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    entity_id  BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    value      TEXT NOT NULL DEFAULT '',
    position   INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS posts (
    id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    entity_id  BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    entry      TEXT NOT NULL DEFAULT '',
    position   INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
    is_private BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS inventory_items (
    id             BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    entity_id      BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    item_entity_id BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    quantity       INTEGER NOT NULL DEFAULT 1,
    description    TEXT NOT NULL DEFAULT '',
    position       INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS entity_abilities (
    id                BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    entity_id         BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    ability_entity_id BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
    charges_used      INTEGER NOT NULL DEFAULT 0,
    notes             TEXT NOT NULL DEFAULT '',
    position          INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_campaign ON entities (campaign_id);
CREATE INDEX IF NOT EXISTS idx_entities_campaign_kind ON entities (campaign_id, kind);
CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities (parent_id);
CREATE INDEX IF NOT EXISTS idx_entities_search ON entities USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_relations_source ON relations (source_id);
CREATE INDEX IF NOT EXISTS idx_relations_target ON relations (target_id);
CREATE INDEX IF NOT EXISTS idx_relations_campaign ON relations (campaign_id);
CREATE INDEX IF NOT EXISTS idx_tags_campaign ON tags (campaign_id);
CREATE INDEX IF NOT EXISTS idx_entity_tags_tag ON entity_tags (tag_id);
CREATE INDEX IF NOT EXISTS idx_attributes_entity ON attributes (entity_id, position);
CREATE INDEX IF NOT EXISTS idx_posts_entity ON posts (entity_id, position);
CREATE INDEX IF NOT EXISTS idx_inventory_entity ON inventory_items (entity_id, position);
CREATE INDEX IF NOT EXISTS idx_inventory_item ON inventory_items (item_entity_id);
CREATE INDEX IF NOT EXISTS idx_abilities_entity ON entity_abilities (entity_id, position);
CREATE INDEX IF NOT EXISTS idx_abilities_ability ON entity_abilities (ability_entity_id);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
