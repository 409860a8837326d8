package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Khateeb-Urrahman/ListTube/internal/media"
)

var docColumns = []string{"id", "user_id", "name", "items", "created_at"}

func setupMockPostgres(t *testing.T) (*Postgres, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgres(mock, nil), mock
}

func TestPostgresAutoMigrate(t *testing.T) {
	p, mock := setupMockPostgres(t)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS playlists").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_playlists_user_created").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, p.AutoMigrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGet(t *testing.T) {
	p, mock := setupMockPostgres(t)
	defer mock.Close()
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, items, created_at\\s+FROM playlists\\s+WHERE id = \\$1").
			WithArgs("p1").
			WillReturnRows(pgxmock.NewRows(docColumns).AddRow(
				"p1", "u1", "Mix", []byte(`[{"id":"1","title":"One","description":"d","thumbnail":"/t.jpg"}]`), created,
			))

		doc, err := p.Get(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "u1", doc.UserID)
		assert.Equal(t, "Mix", doc.Name)
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "One", doc.Items[0].Title)
		assert.Equal(t, created, doc.CreatedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, items, created_at").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := p.Get(ctx, "missing")
		assert.True(t, IsNotFound(err))
	})

	t.Run("Denied", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, name, items, created_at").
			WithArgs("p2").
			WillReturnError(&pgconn.PgError{Code: "42501", Message: "permission denied for table playlists"})

		_, err := p.Get(ctx, "p2")
		assert.True(t, IsDenied(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetUpserts(t *testing.T) {
	p, mock := setupMockPostgres(t)
	defer mock.Close()

	doc := Document{ID: "p1", UserID: "u1", Name: "Mix", CreatedAt: time.Now().UTC()}
	mock.ExpectExec("INSERT INTO playlists .* ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("p1", "u1", "Mix", []byte(`[]`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, p.Set(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	p, mock := setupMockPostgres(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM playlists WHERE id = \\$1").
		WithArgs("p1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, p.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByOwner(t *testing.T) {
	p, mock := setupMockPostgres(t)
	defer mock.Close()
	now := time.Now().UTC()

	mock.ExpectQuery("WHERE user_id = \\$1\\s+ORDER BY created_at ASC, id ASC").
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(docColumns).
			AddRow("p1", "u1", "First", []byte(`[]`), now).
			AddRow("p2", "u1", "Second", []byte(nil), now.Add(time.Second)))

	docs, err := p.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "First", docs[0].Name)
	assert.Equal(t, "Second", docs[1].Name)
	assert.NotNil(t, docs[1].Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("WritesInsideTx", func(t *testing.T) {
		p, mock := setupMockPostgres(t)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM playlists\\s+WHERE id = \\$1\\s+FOR UPDATE").
			WithArgs("p1").
			WillReturnRows(pgxmock.NewRows(docColumns).AddRow("p1", "u1", "Mix", []byte(`[]`), now))
		mock.ExpectExec("UPDATE playlists").
			WithArgs("p1", "Mix", []byte(`[{"id":"a","title":"A","description":"","thumbnail":""}]`)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := p.Update(ctx, "p1", func(doc *Document) (bool, error) {
			doc.Items = append(doc.Items, media.Item{ID: "a", Title: "A"})
			return true, nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoChangeRollsBack", func(t *testing.T) {
		p, mock := setupMockPostgres(t)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("p1").
			WillReturnRows(pgxmock.NewRows(docColumns).AddRow("p1", "u1", "Mix", []byte(`[]`), now))
		mock.ExpectRollback()

		err := p.Update(ctx, "p1", func(doc *Document) (bool, error) {
			return false, nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		p, mock := setupMockPostgres(t)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE").
			WithArgs("gone").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		called := false
		err := p.Update(ctx, "gone", func(doc *Document) (bool, error) {
			called = true
			return true, nil
		})
		assert.True(t, IsNotFound(err))
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
