package vitals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Add(ctx context.Context, record Record) error {
	query := `
		INSERT INTO url_core_web_vitals (
			url_id, execution_date, performance_score,
			first_contentful_paint, largest_contentful_paint,
			total_blocking_time, cumulative_layout_shift,
			speed_index, time_to_first_byte, time_to_interactive,
			crux_largest_contentful_paint, crux_interaction_to_next_paint,
			crux_cumulative_layout_shift, crux_first_contentful_paint,
			crux_time_to_first_byte
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.URLID,
		record.ExecutionDate,
		record.PerformanceScore,
		toNullFloat(record.FirstContentfulPaint),
		toNullFloat(record.LargestContentfulPaint),
		toNullFloat(record.TotalBlockingTime),
		toNullFloat(record.CumulativeLayoutShift),
		toNullFloat(record.SpeedIndex),
		toNullFloat(record.TimeToFirstByte),
		toNullFloat(record.TimeToInteractive),
		toNullFloat(record.CruxLargestContentfulPaint),
		toNullFloat(record.CruxInteractionToNextPaint),
		toNullFloat(record.CruxCumulativeLayoutShift),
		toNullFloat(record.CruxFirstContentfulPaint),
		toNullFloat(record.CruxTimeToFirstByte),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: url_id=%d date=%s",
				ErrDuplicateRecord, record.URLID, record.ExecutionDate.Format("2006-01-02"))
		}
		return fmt.Errorf("%w: failed to add metrics: %v", ErrRepository, err)
	}

	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, urlID int64, executionDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM url_core_web_vitals
			WHERE url_id = $1 AND execution_date = $2
		)
	`

	var exists bool
	err := s.db.QueryRowContext(ctx, query, urlID, executionDate).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check if metrics exist: %v", ErrRepository, err)
	}

	return exists, nil
}

func (s *PostgresStore) GetByURLAndDate(ctx context.Context, urlID int64, executionDate time.Time) (Record, error) {
	query := `
		SELECT url_id, execution_date, performance_score,
			first_contentful_paint, largest_contentful_paint,
			total_blocking_time, cumulative_layout_shift,
			speed_index, time_to_first_byte, time_to_interactive,
			crux_largest_contentful_paint, crux_interaction_to_next_paint,
			crux_cumulative_layout_shift, crux_first_contentful_paint,
			crux_time_to_first_byte
		FROM url_core_web_vitals
		WHERE url_id = $1 AND execution_date = $2
	`

	var record Record
	var fcp, lcp, tbt, cls, si, ttfb, tti sql.NullFloat64
	var cruxLCP, cruxINP, cruxCLS, cruxFCP, cruxTTFB sql.NullFloat64

	err := s.db.QueryRowContext(ctx, query, urlID, executionDate).Scan(
		&record.URLID,
		&record.ExecutionDate,
		&record.PerformanceScore,
		&fcp, &lcp, &tbt, &cls, &si, &ttfb, &tti,
		&cruxLCP, &cruxINP, &cruxCLS, &cruxFCP, &cruxTTFB,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: url_id=%d date=%s",
			ErrNotFound, urlID, executionDate.Format("2006-01-02"))
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: failed to retrieve metrics: %v", ErrRepository, err)
	}

	record.FirstContentfulPaint = fromNullFloat(fcp)
	record.LargestContentfulPaint = fromNullFloat(lcp)
	record.TotalBlockingTime = fromNullFloat(tbt)
	record.CumulativeLayoutShift = fromNullFloat(cls)
	record.SpeedIndex = fromNullFloat(si)
	record.TimeToFirstByte = fromNullFloat(ttfb)
	record.TimeToInteractive = fromNullFloat(tti)
	record.CruxLargestContentfulPaint = fromNullFloat(cruxLCP)
	record.CruxInteractionToNextPaint = fromNullFloat(cruxINP)
	record.CruxCumulativeLayoutShift = fromNullFloat(cruxCLS)
	record.CruxFirstContentfulPaint = fromNullFloat(cruxFCP)
	record.CruxTimeToFirstByte = fromNullFloat(cruxTTFB)

	return record, nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
