// Package collector orchestrates the daily Core Web Vitals collection run.
package collector

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// URLResult is the recorded outcome of processing a single URL.
type URLResult struct {
	URLID   int64  `json:"url_id"`
	URL     string `json:"url"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Summary accumulates the outcome of one collection run. It is safe for
// concurrent updates; skipped URLs only bump the counter and do not appear
// in Results. Read-only once the run has finished, never persisted beyond
// the run-state cache.
type Summary struct {
	RunID         uuid.UUID   `json:"run_id"`
	ExecutionDate time.Time   `json:"execution_date"`
	TotalURLs     int         `json:"total_urls"`
	Successful    int         `json:"successful"`
	Failed        int         `json:"failed"`
	Skipped       int         `json:"skipped"`
	Results       []URLResult `json:"results"`

	mu sync.Mutex
}

func NewSummary(executionDate time.Time, totalURLs int) *Summary {
	return &Summary{
		RunID:         uuid.New(),
		ExecutionDate: executionDate,
		TotalURLs:     totalURLs,
	}
}

func (s *Summary) AddSuccess(urlID int64, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Successful++
	s.Results = append(s.Results, URLResult{URLID: urlID, URL: url, Success: true})
}

func (s *Summary) AddFailure(urlID int64, url, errorMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
	s.Results = append(s.Results, URLResult{
		URLID:   urlID,
		URL:     url,
		Success: false,
		Error:   errorMessage,
	})
}

func (s *Summary) AddSkipped(urlID int64, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Skipped++
}

// FailedResults returns the outcomes of all failed URLs, for reporting.
func (s *Summary) FailedResults() []URLResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var failed []URLResult
	for _, r := range s.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is the fraction of the catalog that succeeded, in [0,1].
func (s *Summary) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.TotalURLs == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.TotalURLs)
}
