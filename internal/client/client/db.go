package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/migrations"
	"github.com/dmitrijs2005/useradmin/internal/filex"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories holds the migrated SQLite database the local stores share.
type Repositories struct {
	DB *sql.DB
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the SQLite database at dsn and
// applies the embedded migrations.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		abs, err := filex.EnsureParentDir(dsn)
		if err != nil {
			return nil, err
		}
		dsn = abs
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{DB: db}, nil
}
