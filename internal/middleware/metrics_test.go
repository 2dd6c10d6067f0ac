package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockMetricsRecorder struct {
	records []metricRecord
}

type metricRecord struct {
	method   string
	endpoint string
	status   string
	duration time.Duration
}

func (m *mockMetricsRecorder) record(method, endpoint, status string, duration time.Duration) {
	m.records = append(m.records, metricRecord{
		method:   method,
		endpoint: endpoint,
		status:   status,
		duration: duration,
	})
}

func (m *mockMetricsRecorder) reset() {
	m.records = []metricRecord{}
}

var mockRecorder = &mockMetricsRecorder{}

func setupMock() func() {
	original := recordHTTPRequest
	recordHTTPRequest = func(method, endpoint, status string, duration time.Duration) {
		mockRecorder.record(method, endpoint, status, duration)
	}
	return func() { recordHTTPRequest = original }
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		expectedStatus int
	}{
		{
			name:           "sets status code 200",
			statusCode:     http.StatusOK,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "sets status code 404",
			statusCode:     http.StatusNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "sets status code 500",
			statusCode:     http.StatusInternalServerError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rw := &responseWriter{
				ResponseWriter: rec,
				statusCode:     http.StatusOK,
			}

			rw.WriteHeader(tt.statusCode)

			if rw.statusCode != tt.expectedStatus {
				t.Errorf("expected status code %d, got %d", tt.expectedStatus, rw.statusCode)
			}

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected underlying response writer status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{
			name:     "vitals by url id",
			path:     "/api/vitals/123",
			expected: "/api/vitals/:id",
		},
		{
			name:     "latest run",
			path:     "/api/runs/latest",
			expected: "/api/runs/latest",
		},
		{
			name:     "url catalog",
			path:     "/api/urls",
			expected: "/api/urls",
		},
		{
			name:     "health endpoint",
			path:     "/healthz",
			expected: "/healthz",
		},
		{
			name:     "metrics endpoint",
			path:     "/metrics",
			expected: "/metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeEndpoint(tt.path)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	cleanup := setupMock()
	defer cleanup()

	tests := []struct {
		name               string
		method             string
		path               string
		handlerStatusCode  int
		expectedEndpoint   string
		expectedStatusCode string
	}{
		{
			name:               "GET vitals with 200",
			method:             http.MethodGet,
			path:               "/api/vitals/123",
			handlerStatusCode:  http.StatusOK,
			expectedEndpoint:   "/api/vitals/:id",
			expectedStatusCode: "200",
		},
		{
			name:               "GET latest run with 404",
			method:             http.MethodGet,
			path:               "/api/runs/latest",
			handlerStatusCode:  http.StatusNotFound,
			expectedEndpoint:   "/api/runs/latest",
			expectedStatusCode: "404",
		},
		{
			name:               "handler without explicit WriteHeader defaults to 200",
			method:             http.MethodGet,
			path:               "/healthz",
			handlerStatusCode:  0,
			expectedEndpoint:   "/healthz",
			expectedStatusCode: "200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRecorder.reset()

			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.handlerStatusCode != 0 {
					w.WriteHeader(tt.handlerStatusCode)
				}
				_, _ = w.Write([]byte("ok"))
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			MetricsMiddleware(handler).ServeHTTP(rec, req)

			if len(mockRecorder.records) != 1 {
				t.Fatalf("expected 1 recorded metric, got %d", len(mockRecorder.records))
			}

			got := mockRecorder.records[0]
			if got.method != tt.method {
				t.Errorf("expected method %q, got %q", tt.method, got.method)
			}
			if got.endpoint != tt.expectedEndpoint {
				t.Errorf("expected endpoint %q, got %q", tt.expectedEndpoint, got.endpoint)
			}
			if got.status != tt.expectedStatusCode {
				t.Errorf("expected status %q, got %q", tt.expectedStatusCode, got.status)
			}
		})
	}
}
