// Package api exposes the reporting HTTP surface: latest run summary,
// stored vitals lookups and the URL catalog.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jose-deblas/dashboardcwv/internal/catalog"
	"github.com/jose-deblas/dashboardcwv/internal/collector"
	"github.com/jose-deblas/dashboardcwv/internal/httputil"
	"github.com/jose-deblas/dashboardcwv/internal/runstate"
	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

// SummarySource serves the latest published run summary.
type SummarySource interface {
	LatestSummary(ctx context.Context) (*collector.Summary, error)
}

type API struct {
	runs    SummarySource
	store   vitals.Store
	catalog catalog.Repository
	mux     *http.ServeMux
}

func NewAPI(runs SummarySource, store vitals.Store, cat catalog.Repository) *API {
	api := &API{
		runs:    runs,
		store:   store,
		catalog: cat,
		mux:     http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("/api/runs/latest", a.latestRun)
	a.mux.HandleFunc("/api/vitals/", a.vitalsByURL)
	a.mux.HandleFunc("/api/urls", a.listURLs)
	a.mux.HandleFunc("/healthz", a.health)
	a.mux.Handle("/metrics", promhttp.Handler())
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) latestRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, err := a.runs.LatestSummary(r.Context())
	if errors.Is(err, runstate.ErrNoSummary) {
		httputil.WriteJSONError(w, "No collection run recorded yet", http.StatusNotFound)
		return
	}
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, summary, http.StatusOK)
}

func (a *API) vitalsByURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/vitals/")
	urlID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		httputil.WriteJSONError(w, "Invalid URL ID", http.StatusBadRequest)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httputil.WriteJSONError(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	record, err := a.store.GetByURLAndDate(r.Context(), urlID, date)
	if errors.Is(err, vitals.ErrNotFound) {
		httputil.WriteJSONError(w, "Metrics not found", http.StatusNotFound)
		return
	}
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, record, http.StatusOK)
}

func (a *API) listURLs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	urls, err := a.catalog.GetAll(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if urls == nil {
		urls = []catalog.URL{}
	}

	httputil.WriteJSON(w, urls, http.StatusOK)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
