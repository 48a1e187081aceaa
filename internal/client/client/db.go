package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/migrations"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/repositories/books"
	"github.com/dmitrijs2005/pocketlibrary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata metadata.Repository
	Books    books.Repository
}

func NewRepositories(db *sql.DB, log logging.Logger) *Repositories {
	return &Repositories{
		Metadata: metadata.NewSQLiteRepository(db),
		Books:    books.NewSQLiteRepository(db, log),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and migrates it. The pool is
// limited to one connection, which serializes writers.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
