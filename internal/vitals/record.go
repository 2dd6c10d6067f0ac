// Package vitals holds the Core Web Vitals measurement record and its store.
package vitals

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateRecord = errors.New("metrics already exist for url and date")
	ErrNotFound        = errors.New("metrics not found")
	ErrRepository      = errors.New("vitals repository error")
)

// Record is one day's measurement for one URL. Every metric except the
// performance score is a pointer: nil means the upstream API did not report
// it, which is distinct from a measured zero. The score is always present
// and defaults to 0 when the API response carries none, so it stays
// comparable downstream.
type Record struct {
	URLID         int64     `json:"url_id"`
	ExecutionDate time.Time `json:"execution_date"`

	PerformanceScore float64 `json:"performance_score"`

	FirstContentfulPaint   *float64 `json:"first_contentful_paint,omitempty"`
	LargestContentfulPaint *float64 `json:"largest_contentful_paint,omitempty"`
	TotalBlockingTime      *float64 `json:"total_blocking_time,omitempty"`
	CumulativeLayoutShift  *float64 `json:"cumulative_layout_shift,omitempty"`
	SpeedIndex             *float64 `json:"speed_index,omitempty"`
	TimeToFirstByte        *float64 `json:"time_to_first_byte,omitempty"`
	TimeToInteractive      *float64 `json:"time_to_interactive,omitempty"`

	CruxLargestContentfulPaint *float64 `json:"crux_largest_contentful_paint,omitempty"`
	CruxInteractionToNextPaint *float64 `json:"crux_interaction_to_next_paint,omitempty"`
	CruxCumulativeLayoutShift  *float64 `json:"crux_cumulative_layout_shift,omitempty"`
	CruxFirstContentfulPaint   *float64 `json:"crux_first_contentful_paint,omitempty"`
	CruxTimeToFirstByte        *float64 `json:"crux_time_to_first_byte,omitempty"`
}

// Store is the persistence contract for measurement records.
// Add reports ErrDuplicateRecord when a record for the same
// (url_id, execution_date) already exists, which callers treat as a
// benign race rather than a failure.
type Store interface {
	Exists(ctx context.Context, urlID int64, executionDate time.Time) (bool, error)
	Add(ctx context.Context, record Record) error
	GetByURLAndDate(ctx context.Context, urlID int64, executionDate time.Time) (Record, error)
}
