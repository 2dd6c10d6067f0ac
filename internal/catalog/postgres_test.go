package catalog

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresRepository(db)
	return db, mock, repo
}

func urlColumns() []string {
	return []string{"url_id", "url", "device", "page_type", "brand", "category", "country_id", "created_at"}
}

func TestGetAll(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	now := time.Now()

	t.Run("returns all urls in catalog order", func(t *testing.T) {
		rows := sqlmock.NewRows(urlColumns()).
			AddRow(1, "https://example.com", "mobile", "home", "acme", "retail", "ES", now).
			AddRow(2, "https://example.com/shop", "desktop", "plp", "acme", "retail", "ES", nil)

		mock.ExpectQuery("SELECT.*FROM urls.*ORDER BY url_id").
			WillReturnRows(rows)

		urls, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, urls, 2)

		assert.Equal(t, int64(1), urls[0].ID)
		assert.Equal(t, DeviceMobile, urls[0].Device)
		assert.NotNil(t, urls[0].CreatedAt)
		assert.Equal(t, int64(2), urls[1].ID)
		assert.Equal(t, DeviceDesktop, urls[1].Device)
		assert.Nil(t, urls[1].CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty catalog", func(t *testing.T) {
		mock.ExpectQuery("SELECT.*FROM urls").
			WillReturnRows(sqlmock.NewRows(urlColumns()))

		urls, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("query error wraps ErrRepository", func(t *testing.T) {
		mock.ExpectQuery("SELECT.*FROM urls").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.GetAll(ctx)
		assert.ErrorIs(t, err, ErrRepository)
	})
}

func TestGetByID(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(urlColumns()).
			AddRow(42, "https://example.com", "mobile", "home", "acme", "retail", "ES", nil)

		mock.ExpectQuery("SELECT.*FROM urls.*WHERE url_id").
			WithArgs(int64(42)).
			WillReturnRows(rows)

		u, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), u.ID)
		assert.Equal(t, "https://example.com", u.URL)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT.*FROM urls.*WHERE url_id").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAdd(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	t.Run("inserts and returns id", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO urls").
			WithArgs("https://example.com", DeviceMobile, "home", "acme", "retail", "ES").
			WillReturnRows(sqlmock.NewRows([]string{"url_id"}).AddRow(7))

		id, err := repo.Add(ctx, URL{
			URL:       "https://example.com",
			Device:    DeviceMobile,
			PageType:  "home",
			Brand:     "acme",
			Category:  "retail",
			CountryID: "ES",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("rejects invalid url before touching the database", func(t *testing.T) {
		_, err := repo.Add(ctx, URL{URL: "example.com", Device: DeviceMobile})
		assert.ErrorIs(t, err, ErrInvalidURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
