package pagespeed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-deblas/dashboardcwv/internal/catalog"
	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

// Fetcher combines the HTTP client and the mapper behind a single call,
// returning a ready-to-store record for a catalog entry.
type Fetcher struct {
	client *Client
	logger zerolog.Logger
}

func NewFetcher(client *Client, logger zerolog.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

func (f *Fetcher) FetchVitals(ctx context.Context, u catalog.URL, executionDate time.Time) (vitals.Record, error) {
	f.logger.Info().
		Int64("url_id", u.ID).
		Str("url", u.URL).
		Str("device", string(u.Device)).
		Msg("fetching core web vitals")

	resp, err := f.client.FetchMetrics(ctx, u.URL, string(u.Device), []string{"performance"})
	if err != nil {
		return vitals.Record{}, err
	}

	record := MapRecord(u.ID, executionDate, resp)

	f.logger.Info().
		Int64("url_id", u.ID).
		Float64("performance_score", record.PerformanceScore).
		Msg("fetched core web vitals")

	return record, nil
}
