package meterdb

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

// OpenMemory returns an in-memory database with the up migrations applied.
// Used for dry runs and tests where no database file should be touched.
func OpenMemory() (*sqlx.DB, error) {
	conn, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection would get its own empty in-memory database
	conn.SetMaxOpenConns(1)

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		conn.Close()
		return nil, err
	}
	sort.Strings(names)
	for _, name := range names {
		content, err := migrationFS.ReadFile(name)
		if err != nil {
			conn.Close()
			return nil, err
		}
		if _, err := conn.Exec(upSection(string(content))); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying %s: %w", name, err)
		}
	}
	return conn, nil
}

func upSection(migration string) string {
	up := migration
	if i := strings.Index(up, "-- +up"); i >= 0 {
		up = up[i+len("-- +up"):]
	}
	if i := strings.Index(up, "-- +down"); i >= 0 {
		up = up[:i]
	}
	return up
}
