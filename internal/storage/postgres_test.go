package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var recordColumns = []string{"key", "url", "created_at", "expiration", "history"}

func setupPostgresStorage(t testing.TB) (*PostgresStorage, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		mockDB.Close()
	})

	return NewPostgresStorage(mockDB, zap.NewNop()), mock
}

func TestPostgresStorage_Load(t *testing.T) {
	t.Run("position order", func(t *testing.T) {
		store, mock := setupPostgresStorage(t)

		rows := sqlmock.NewRows(recordColumns).
			AddRow("b.txt", "https://x/b", "2024-01-02T00:00:00", "2024-01-09T00:00:00", []byte(`[]`)).
			AddRow("a.txt", "https://x/a?v=2", "2024-01-05T00:00:00", "2024-01-12T00:00:00",
				[]byte(`[{"url":"https://x/a?v=1","created_at":"2024-01-01T00:00:00","expiration":"2024-01-08T00:00:00"}]`))
		mock.ExpectQuery(`SELECT key, url, created_at, expiration, history\s+FROM signed_urls ORDER BY position`).
			WillReturnRows(rows)

		recs, err := store.Load(context.TODO())

		require.NoError(t, err)
		assert.Equal(t, []string{"b.txt", "a.txt"}, recs.Keys())
		a, ok := recs.Get("a.txt")
		require.True(t, ok)
		assert.Equal(t, []models.URLEntry{{URL: "https://x/a?v=1", CreatedAt: "2024-01-01T00:00:00", Expiration: "2024-01-08T00:00:00"}}, a.History)
		b, _ := recs.Get("b.txt")
		assert.Equal(t, []models.URLEntry{}, b.History)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid history", func(t *testing.T) {
		store, mock := setupPostgresStorage(t)

		rows := sqlmock.NewRows(recordColumns).
			AddRow("a.txt", "https://x/a", "2024-01-05T00:00:00", "2024-01-12T00:00:00", []byte(`{not json`))
		mock.ExpectQuery(`SELECT key`).WillReturnRows(rows)

		recs, err := store.Load(context.TODO())

		assert.ErrorContains(t, err, "record a.txt: invalid history")
		assert.Nil(t, recs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		store, mock := setupPostgresStorage(t)
		errDown := errors.New("connection refused")

		mock.ExpectQuery(`SELECT key`).WillReturnError(errDown)

		_, err := store.Load(context.TODO())

		assert.ErrorIs(t, err, errDown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStorage_Save(t *testing.T) {
	records := func() *models.Records {
		recs := models.NewRecords()
		recs.Set("b.txt", models.Record{URLEntry: models.URLEntry{URL: "https://x/b", CreatedAt: "2024-01-02T00:00:00", Expiration: "2024-01-09T00:00:00"}})
		recs.Set("a.txt", models.Record{
			URLEntry: models.URLEntry{URL: "https://x/a?v=2", CreatedAt: "2024-01-05T00:00:00", Expiration: "2024-01-12T00:00:00"},
			History:  []models.URLEntry{{URL: "https://x/a?v=1", CreatedAt: "2024-01-01T00:00:00", Expiration: "2024-01-08T00:00:00"}},
		})
		return recs
	}

	t.Run("success", func(t *testing.T) {
		store, mock := setupPostgresStorage(t)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM signed_urls`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`INSERT INTO signed_urls`).
			WithArgs("b.txt", 0, "https://x/b", "2024-01-02T00:00:00", "2024-01-09T00:00:00", "[]").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO signed_urls`).
			WithArgs("a.txt", 1, "https://x/a?v=2", "2024-01-05T00:00:00", "2024-01-12T00:00:00",
				`[{"url":"https://x/a?v=1","created_at":"2024-01-01T00:00:00","expiration":"2024-01-08T00:00:00"}]`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.Save(context.TODO(), records())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert fails", func(t *testing.T) {
		store, mock := setupPostgresStorage(t)
		errInsert := errors.New("disk full")

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM signed_urls`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`INSERT INTO signed_urls`).
			WithArgs("b.txt", 0, "https://x/b", "2024-01-02T00:00:00", "2024-01-09T00:00:00", "[]").
			WillReturnError(errInsert)
		mock.ExpectRollback()

		err := store.Save(context.TODO(), records())

		assert.ErrorIs(t, err, errInsert)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
