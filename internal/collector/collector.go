package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jose-deblas/dashboardcwv/internal/catalog"
	"github.com/jose-deblas/dashboardcwv/internal/metrics"
	"github.com/jose-deblas/dashboardcwv/internal/pagespeed"
	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

// Catalog is the read side of the URL catalog used by the collector.
type Catalog interface {
	GetAll(ctx context.Context) ([]catalog.URL, error)
}

// Store is the subset of the vitals store the collector writes to.
type Store interface {
	Exists(ctx context.Context, urlID int64, executionDate time.Time) (bool, error)
	Add(ctx context.Context, record vitals.Record) error
}

// Fetcher produces a ready-to-store record for one catalog entry.
type Fetcher interface {
	FetchVitals(ctx context.Context, u catalog.URL, executionDate time.Time) (vitals.Record, error)
}

// Collector drives the per-URL skip/fetch/store state machine over the
// whole catalog. One URL's failure never stops the rest; only a catalog
// read failure aborts a run.
type Collector struct {
	catalog Catalog
	store   Store
	fetcher Fetcher
	workers int
	logger  zerolog.Logger
}

func New(cat Catalog, store Store, fetcher Fetcher, workers int, logger zerolog.Logger) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		catalog: cat,
		store:   store,
		fetcher: fetcher,
		workers: workers,
		logger:  logger,
	}
}

// Run collects metrics for every catalog URL that has no record for
// executionDate yet and returns the aggregate summary.
func (c *Collector) Run(ctx context.Context, executionDate time.Time) (*Summary, error) {
	start := time.Now()

	c.logger.Info().
		Str("execution_date", executionDate.Format("2006-01-02")).
		Msg("starting data collection")

	urls, err := c.catalog.GetAll(ctx)
	if err != nil {
		metrics.RecordRun("aborted", time.Since(start))
		return nil, fmt.Errorf("fetch url catalog: %w", err)
	}

	summary := NewSummary(executionDate, len(urls))

	if len(urls) == 0 {
		c.logger.Warn().Msg("no urls found in catalog")
		metrics.RecordRun("ok", time.Since(start))
		return summary, nil
	}

	c.logger.Info().Int("total_urls", len(urls)).Msg("loaded url catalog")

	if c.workers == 1 {
		for _, u := range urls {
			c.processURL(ctx, u, executionDate, summary)
		}
	} else {
		c.runParallel(ctx, urls, executionDate, summary)
	}

	status := "ok"
	if summary.Failed > 0 {
		status = "partial_failure"
	}
	metrics.RecordRun(status, time.Since(start))

	c.logger.Info().
		Int("total", summary.TotalURLs).
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("duration", time.Since(start)).
		Msg("data collection completed")

	return summary, nil
}

func (c *Collector) runParallel(ctx context.Context, urls []catalog.URL, executionDate time.Time, summary *Summary) {
	jobs := make(chan catalog.URL)

	var wg sync.WaitGroup
	wg.Add(c.workers)
	for i := 0; i < c.workers; i++ {
		go func() {
			defer wg.Done()
			for u := range jobs {
				c.processURL(ctx, u, executionDate, summary)
			}
		}()
	}

	for _, u := range urls {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
}

// processURL applies the per-URL state machine: skip when data exists,
// otherwise fetch, map and store. Exactly one summary update happens per
// URL, whatever goes wrong.
func (c *Collector) processURL(ctx context.Context, u catalog.URL, executionDate time.Time, summary *Summary) {
	log := c.logger.With().Int64("url_id", u.ID).Str("url", u.URL).Logger()

	exists, err := c.store.Exists(ctx, u.ID, executionDate)
	if err != nil {
		log.Error().Err(err).Msg("failed to check for existing metrics")
		summary.AddFailure(u.ID, u.URL, formatError(err))
		metrics.RecordURLProcessed("failed")
		return
	}
	if exists {
		log.Info().
			Str("execution_date", executionDate.Format("2006-01-02")).
			Msg("skipping url, metrics already exist")
		summary.AddSkipped(u.ID, u.URL)
		metrics.RecordURLProcessed("skipped")
		return
	}

	fetchStart := time.Now()
	record, err := c.fetcher.FetchVitals(ctx, u, executionDate)
	metrics.RecordFetchDuration(string(u.Device), time.Since(fetchStart))
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch metrics")
		summary.AddFailure(u.ID, u.URL, formatError(err))
		metrics.RecordURLProcessed("failed")
		return
	}

	if err := c.store.Add(ctx, record); err != nil {
		if errors.Is(err, vitals.ErrDuplicateRecord) {
			// lost a race against a concurrent writer, the data is there
			log.Warn().Err(err).Msg("duplicate record, treating as skipped")
			summary.AddSkipped(u.ID, u.URL)
			metrics.RecordURLProcessed("skipped")
			return
		}
		log.Error().Err(err).Msg("failed to store metrics")
		summary.AddFailure(u.ID, u.URL, formatError(err))
		metrics.RecordURLProcessed("failed")
		return
	}

	log.Info().
		Float64("performance_score", record.PerformanceScore).
		Msg("stored metrics")
	summary.AddSuccess(u.ID, u.URL)
	metrics.RecordURLProcessed("success")
}

// formatError renders an error as "<kind>: <message>" for the summary.
func formatError(err error) string {
	return fmt.Sprintf("%s: %s", errorKind(err), err.Error())
}

func errorKind(err error) string {
	var upstreamErr *pagespeed.UpstreamError
	switch {
	case errors.Is(err, pagespeed.ErrNotConfigured):
		return "ConfigurationError"
	case errors.As(err, &upstreamErr):
		return "UpstreamError"
	case errors.Is(err, vitals.ErrRepository), errors.Is(err, catalog.ErrRepository):
		return "RepositoryError"
	default:
		return "InternalError"
	}
}
