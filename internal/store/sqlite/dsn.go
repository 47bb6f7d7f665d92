package sqlite

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Pragmas ride the DSN so every pooled connection gets them; a plain
// PRAGMA statement would only configure the connection it ran on, and
// foreign_keys in particular must hold on all of them for the cascade
// contract.
const pragmaParams = "_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

func parseDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "sqlite://") {
		return "", fmt.Errorf("invalid sqlite DSN scheme, expected sqlite://")
	}

	rest := strings.TrimPrefix(dsn, "sqlite://")

	if rest == ":memory:" {
		return ":memory:?" + pragmaParams, nil
	}

	path := rest
	query := ""
	if strings.Contains(rest, "?") {
		parts := strings.SplitN(rest, "?", 2)
		path = parts[0]
		query = parts[1]
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return "", fmt.Errorf("unescaping path: %w", err)
	}
	path = unescaped

	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "./") {
		path = "./" + path
	}

	if query == "" {
		query = pragmaParams
	} else {
		query = query + "&" + pragmaParams
	}

	return path + "?" + query, nil
}
