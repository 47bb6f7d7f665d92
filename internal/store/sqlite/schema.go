package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		settings   TEXT NOT NULL DEFAULT '{}',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entities (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL,
		name        TEXT NOT NULL,
		subtype     TEXT NOT NULL DEFAULT '',
		entry       TEXT NOT NULL DEFAULT '',
		image       TEXT NOT NULL DEFAULT '',
		parent_id   INTEGER REFERENCES entities(id) ON DELETE SET NULL,
		is_private  INTEGER NOT NULL DEFAULT 0,
		data        TEXT NOT NULL DEFAULT '{}',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relations (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id   INTEGER NOT NULL,
		source_id     INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_id     INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		relation_type TEXT NOT NULL,
		mirror_type   TEXT NOT NULL DEFAULT '',
		attitude      INTEGER NOT NULL DEFAULT 0,
		is_private    INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		CHECK (source_id <> target_id)
	);

	CREATE TABLE IF NOT EXISTS tags (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		campaign_id INTEGER NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		color       TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entity_tags (
		entity_id  INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		tag_id     INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		PRIMARY KEY (entity_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS attributes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id  INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		value      TEXT NOT NULL DEFAULT '',
		position   INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id  INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		entry      TEXT NOT NULL DEFAULT '',
		position   INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
		is_private INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS inventory_items (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id      INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		item_entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		quantity       INTEGER NOT NULL DEFAULT 1,
		description    TEXT NOT NULL DEFAULT '',
		position       INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entity_abilities (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id         INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		ability_entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		charges_used      INTEGER NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT '',
		position          INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_campaign ON entities (campaign_id);
	CREATE INDEX IF NOT EXISTS idx_entities_campaign_kind ON entities (campaign_id, kind);
	CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities (parent_id);
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

	CREATE VIRTUAL TABLE IF NOT EXISTS entities_fts USING fts5(
		name,
		entry,
		content=entities,
		content_rowid=id
	);

	CREATE TRIGGER IF NOT EXISTS entities_ai AFTER INSERT ON entities BEGIN
		INSERT INTO entities_fts(rowid, name, entry)
		VALUES (new.id, new.name, new.entry);
	END;

	CREATE TRIGGER IF NOT EXISTS entities_ad AFTER DELETE ON entities BEGIN
		INSERT INTO entities_fts(entities_fts, rowid, name, entry)
		VALUES ('delete', old.id, old.name, old.entry);
	END;

	CREATE TRIGGER IF NOT EXISTS entities_au AFTER UPDATE ON entities BEGIN
		INSERT INTO entities_fts(entities_fts, rowid, name, entry)
		VALUES ('delete', old.id, old.name, old.entry);
		INSERT INTO entities_fts(rowid, name, entry)
		VALUES (new.id, new.name, new.entry);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements splits the DDL on statement-final semicolons. Trigger
// bodies contain semicolons of their own, so a trigger only ends at its
// END marker.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	var inTrigger bool

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(stripped), "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if inTrigger {
			if strings.EqualFold(stripped, "END;") {
				statements = append(statements, current.String())
				current.Reset()
				inTrigger = false
			}
			continue
		}

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}
