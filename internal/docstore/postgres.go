package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

// sqlstateInsufficientPrivilege is raised by row level security policies and
// missing grants.
const sqlstateInsufficientPrivilege = "42501"

// DB is the subset of *pgxpool.Pool the Postgres collection uses. It can be
// replaced by pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Postgres stores playlist documents in a single table with the item
// sequence kept as JSONB.
type Postgres struct {
	db     DB
	logger *slog.Logger
}

func NewPostgres(db DB, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

// AutoMigrate creates the playlists table and its owner index.
func (p *Postgres) AutoMigrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS playlists (
          id          TEXT PRIMARY KEY,
          user_id     TEXT NOT NULL,
          name        TEXT NOT NULL,
          items       JSONB NOT NULL DEFAULT '[]'::jsonb,
          created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		p.logger.Error("migrate playlists", "error", err)
		return err
	}

	if _, err := p.db.Exec(ctx, `
      CREATE INDEX IF NOT EXISTS idx_playlists_user_created
      ON playlists(user_id, created_at)
    `); err != nil {
		return err
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (Document, error) {
	doc, err := scanDocument(p.db.QueryRow(ctx, `
		SELECT id, user_id, name, items, created_at
		FROM playlists
		WHERE id = $1
	`, id))
	if err != nil {
		return Document{}, fmt.Errorf("get playlist %s: %w", id, mapPgError(err))
	}
	return doc, nil
}

func (p *Postgres) Set(ctx context.Context, doc Document) error {
	items, err := marshalItems(doc)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO playlists (id, user_id, name, items, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			name = EXCLUDED.name,
			items = EXCLUDED.items,
			created_at = EXCLUDED.created_at
	`, doc.ID, doc.UserID, doc.Name, items, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("set playlist %s: %w", doc.ID, mapPgError(err))
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete playlist %s: %w", id, mapPgError(err))
	}
	return nil
}

func (p *Postgres) ListByOwner(ctx context.Context, userID string) ([]Document, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, user_id, name, items, created_at
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", mapPgError(err))
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list playlists scan: %w", mapPgError(err))
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list playlists rows: %w", mapPgError(err))
	}
	return docs, nil
}

// Update locks the row for the duration of fn so concurrent writers on the
// same playlist queue up instead of overwriting each other.
func (p *Postgres) Update(ctx context.Context, id string, fn func(doc *Document) (bool, error)) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("update playlist %s begin tx: %w", id, mapPgError(err))
	}
	defer tx.Rollback(ctx)

	doc, err := scanDocument(tx.QueryRow(ctx, `
		SELECT id, user_id, name, items, created_at
		FROM playlists
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return fmt.Errorf("update playlist %s fetch: %w", id, mapPgError(err))
	}

	changed, err := fn(&doc)
	if err != nil || !changed {
		return err
	}

	items, err := marshalItems(doc)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE playlists
		SET name = $2,
			items = $3
		WHERE id = $1
	`, id, doc.Name, items); err != nil {
		return fmt.Errorf("update playlist %s write: %w", id, mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("update playlist %s commit: %w", id, mapPgError(err))
	}
	return nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		doc   Document
		items []byte
	)
	if err := row.Scan(&doc.ID, &doc.UserID, &doc.Name, &items, &doc.CreatedAt); err != nil {
		return Document{}, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &doc.Items); err != nil {
			return Document{}, fmt.Errorf("decode items: %w", err)
		}
	}
	if doc.Items == nil {
		doc.Items = []media.Item{}
	}
	return doc, nil
}

func marshalItems(doc Document) ([]byte, error) {
	items := doc.Items
	if items == nil {
		items = []media.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items for %s: %w", doc.ID, err)
	}
	return b, nil
}

func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlstateInsufficientPrivilege {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, pgErr.Message)
	}
	return err
}
