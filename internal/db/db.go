// Package db is the lock's sqlite event journal. It records what the
// controller did (enrollments, attempts, lockouts, overrides) and never the
// enrolled gesture itself.
package db

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/tailscale/tailsql/server/tailsql"
	_ "modernc.org/sqlite"
	"tailscale.com/tsweb"
)

// MemoryPath opens a private in-memory journal.
const MemoryPath = ":memory:"

type DB struct {
	*sql.DB
	path string
}

// pragmas applied to on-disk journals.
var filePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA temp_store=MEMORY",
}

// NewDB opens the journal at path, applies pragmas and runs the embedded
// migrations. An empty path or MemoryPath gives an in-memory journal.
func NewDB(path string) (*DB, error) {
	if path == "" {
		path = MemoryPath
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection: every :memory: connection is its own database, and the
	// journal has a single writer anyway.
	sqlDB.SetMaxOpenConns(1)

	if path != MemoryPath {
		for _, p := range filePragmas {
			if _, err := sqlDB.Exec(p); err != nil {
				sqlDB.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", p, err)
			}
		}
	}

	db := &DB{DB: sqlDB, path: path}
	if err := db.MigrateUp(migrationsFS); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the path the journal was opened with.
func (db *DB) Path() string { return db.path }

// AttachAdminRoutes mounts a tailsql console for the journal under
// /debug/tailsql/.
func (db *DB) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)
	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+db.path, db.DB, &tailsql.DBOptions{
		Label: "Lock journal",
	})

	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
	return nil
}
