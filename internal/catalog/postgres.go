package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]URL, error) {
	query := `
		SELECT url_id, url, device, page_type, brand, category, country_id, created_at
		FROM urls
		ORDER BY url_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to retrieve urls: %v", ErrRepository, err)
	}
	defer rows.Close()

	var urls []URL
	for rows.Next() {
		u, err := scanURL(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan url row: %v", ErrRepository, err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate url rows: %v", ErrRepository, err)
	}

	return urls, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, urlID int64) (URL, error) {
	query := `
		SELECT url_id, url, device, page_type, brand, category, country_id, created_at
		FROM urls
		WHERE url_id = $1
	`

	row := r.db.QueryRowContext(ctx, query, urlID)
	u, err := scanURL(row)
	if errors.Is(err, sql.ErrNoRows) {
		return URL{}, fmt.Errorf("%w: url_id=%d", ErrNotFound, urlID)
	}
	if err != nil {
		return URL{}, fmt.Errorf("%w: failed to retrieve url %d: %v", ErrRepository, urlID, err)
	}

	return u, nil
}

func (r *PostgresRepository) Add(ctx context.Context, u URL) (int64, error) {
	if err := u.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO urls (url, device, page_type, brand, category, country_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING url_id
	`

	var urlID int64
	err := r.db.QueryRowContext(
		ctx,
		query,
		u.URL,
		u.Device,
		u.PageType,
		u.Brand,
		u.Category,
		u.CountryID,
	).Scan(&urlID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to add url: %v", ErrRepository, err)
	}

	return urlID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanURL(row rowScanner) (URL, error) {
	var u URL
	var createdAt sql.NullTime

	err := row.Scan(
		&u.ID,
		&u.URL,
		&u.Device,
		&u.PageType,
		&u.Brand,
		&u.Category,
		&u.CountryID,
		&createdAt,
	)
	if err != nil {
		return URL{}, err
	}

	if createdAt.Valid {
		t := createdAt.Time
		u.CreatedAt = &t
	}

	return u, nil
}
