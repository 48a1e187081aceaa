package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/dbx"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
)

const bookColumns = `id, title, author, year, cover_url, personal_photo_path, is_manual_entry, created_at, synced_to_cloud`

const upsertQuery = `
	INSERT INTO books (` + bookColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		author = excluded.author,
		year = excluded.year,
		cover_url = excluded.cover_url,
		personal_photo_path = excluded.personal_photo_path,
		is_manual_entry = excluded.is_manual_entry,
		created_at = excluded.created_at,
		synced_to_cloud = excluded.synced_to_cloud`

type SQLiteRepository struct {
	db      *sql.DB
	log     logging.Logger
	changes *notifier
}

func NewSQLiteRepository(db *sql.DB, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, log: log, changes: newNotifier()}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, b models.Book) error {
	if err := upsert(ctx, r.db, b); err != nil {
		return err
	}
	r.changes.publish()
	return nil
}

func (r *SQLiteRepository) UpsertMany(ctx context.Context, bs []models.Book) error {
	if len(bs) == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, b := range bs {
			if err := upsert(ctx, tx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.changes.publish()
	return nil
}

func upsert(ctx context.Context, db dbx.DBTX, b models.Book) error {
	_, err := db.ExecContext(ctx, upsertQuery,
		b.ID, b.Title, b.Author, nullInt(b.Year), nullString(b.CoverURL), nullString(b.PersonalPhotoPath),
		b.IsManualEntry, b.CreatedAt.UnixMilli(), b.SyncedToCloud,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert book %s: %w", b.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, b models.Book) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books SET
			title = ?, author = ?, year = ?, cover_url = ?, personal_photo_path = ?,
			is_manual_entry = ?, synced_to_cloud = ?
		WHERE id = ?`,
		b.Title, b.Author, nullInt(b.Year), nullString(b.CoverURL), nullString(b.PersonalPhotoPath),
		b.IsManualEntry, b.SyncedToCloud, b.ID,
	)
	return r.affected(res, err, "update book "+b.ID)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	_, err = r.affected(res, err, "delete book "+id)
	return err
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE books SET synced_to_cloud = 1 WHERE id = ?`, id)
	_, err = r.affected(res, err, "mark book "+id+" synced")
	return err
}

func (r *SQLiteRepository) UpdatePhotoPath(ctx context.Context, id, path string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET personal_photo_path = ?, synced_to_cloud = 0 WHERE id = ?`,
		nullString(path), id)
	_, err = r.affected(res, err, "update photo of book "+id)
	return err
}

// affected finishes a single-statement write: it wraps the error, reads the
// row count and notifies streams when something changed.
func (r *SQLiteRepository) affected(res sql.Result, err error, what string) (int64, error) {
	if err != nil {
		return 0, fmt.Errorf("failed to %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		r.changes.publish()
	}
	return n, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Book, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book %s: %w", id, err)
	}
	return &b, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check book %s: %w", id, err)
	}
	return exists, nil
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context) ([]models.Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books WHERE synced_to_cloud = 0 ORDER BY created_at DESC, id`)
}

func (r *SQLiteRepository) listAll(ctx context.Context) ([]models.Book, error) {
	return r.query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC, id`)
}

func (r *SQLiteRepository) search(ctx context.Context, text string) ([]models.Book, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	return r.query(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, id`, pattern, pattern)
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select books: %w", err)
	}
	list, err := dbx.CollectRows(rows, func(rows *sql.Rows) (models.Book, error) {
		return scanBook(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan books: %w", err)
	}
	return list, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (models.Book, error) {
	var (
		b         models.Book
		year      sql.NullInt64
		cover     sql.NullString
		photo     sql.NullString
		createdAt int64
	)

	err := s.Scan(&b.ID, &b.Title, &b.Author, &year, &cover, &photo, &b.IsManualEntry, &createdAt, &b.SyncedToCloud)
	if err != nil {
		return models.Book{}, err
	}

	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	b.CoverURL = cover.String
	b.PersonalPhotoPath = photo.String
	b.CreatedAt = time.UnixMilli(createdAt)
	return b, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
