// Package db wraps the service's SQLite database: housing records,
// county geometry, and the prediction log.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with the service's queries.
type DB struct {
	*sql.DB
}

// NewDB opens (and creates if needed) the SQLite database at path.
// Schema management happens through migrations, not here.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}
	return &DB{sqlDB}, nil
}
