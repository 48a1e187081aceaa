package cloud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/pocketlibrary/internal/cloud/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// runPostgresMigrations is a test seam for applying the embedded schema.
var runPostgresMigrations = func(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// PostgresStore keeps one jsonb row per (user, record).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through pgx and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, newError(OpOpen, "", "", fmt.Errorf("db open error: %w", err))
	}

	if err := runPostgresMigrations(ctx, db, migrations.Migrations); err != nil {
		_ = db.Close()
		return nil, newError(OpOpen, "", "", fmt.Errorf("migration error: %w", err))
	}

	return NewPostgresStore(db), nil
}

func (s *PostgresStore) Put(ctx context.Context, userID string, doc Document) error {
	id, err := validatePut(userID, doc)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return newError(OpPut, userID, id, err)
	}

	const q = `
		INSERT INTO user_books (user_id, record_id, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (user_id, record_id)
		DO UPDATE SET data = user_books.data || EXCLUDED.data, updated_at = now()`

	if _, err := s.db.ExecContext(ctx, q, userID, id, string(data)); err != nil {
		return newError(OpPut, userID, id, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID, recordID string) (Document, error) {
	if err := validate(OpGet, userID); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM user_books WHERE user_id = $1 AND record_id = $2`,
		userID, recordID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, newError(OpGet, userID, recordID, err)
	}

	doc, err := decode(data)
	if err != nil {
		return nil, newError(OpGet, userID, recordID, err)
	}
	return doc, nil
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Document, error) {
	if err := validate(OpList, userID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, data FROM user_books WHERE user_id = $1 ORDER BY record_id`, userID)
	if err != nil {
		return nil, newError(OpList, userID, "", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			recordID string
			data     []byte
		)
		if err := rows.Scan(&recordID, &data); err != nil {
			return nil, newError(OpList, userID, "", err)
		}
		doc, err := decode(data)
		if err != nil {
			doc = undecodable(recordID, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(OpList, userID, "", err)
	}
	return docs, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID, recordID string) error {
	if err := validate(OpDelete, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_books WHERE user_id = $1 AND record_id = $2`, userID, recordID)
	if err != nil {
		return newError(OpDelete, userID, recordID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
