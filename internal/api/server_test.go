package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amishk599/jobscout/internal/metrics"
	"github.com/amishk599/jobscout/internal/model"
)

type fakeSearcher struct {
	got  model.SearchRequest
	resp *model.SearchResponse
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeSearcher) Roles() []model.Role {
	return []model.Role{
		{Key: "devops", Label: "DevOps / Platform Engineer", ExperienceLevel: "mid", SearchTerms: []string{"devops engineer"}},
	}
}

func newTestServer(t *testing.T, searcher Searcher) http.Handler {
	t.Helper()
	rec := metrics.NewRecorder(metrics.WithRegistry(prometheus.NewRegistry()))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := NewServer(searcher, rec, logger, []string{"http://localhost:5173"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e.Detail
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{})
	rec := do(t, h, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestRoles(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{})
	rec := do(t, h, http.MethodGet, "/roles", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0]["key"] != "devops" || got[0]["experience_level"] != "mid" {
		t.Errorf("unexpected roles: %v", got)
	}
}

func TestSearch_Success(t *testing.T) {
	searcher := &fakeSearcher{resp: &model.SearchResponse{
		GeneratedAt: "2025-03-14T12:00:00Z",
		Role:        model.Role{Key: "devops"},
		Location:    "United States",
		Windows:     []model.Window{{Label: "Last 20 minutes", Minutes: 20, Jobs: []model.JobSummary{}}},
		SearchTerms: []string{"devops engineer"},
	}}
	h := newTestServer(t, searcher)

	rec := do(t, h, http.MethodPost, "/jobs/search", `{"role":"devops","skills":["go","terraform"],"max_results":20,"extra":"ignored"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if searcher.got.Role != "devops" || len(searcher.got.Skills) != 2 {
		t.Errorf("unexpected request passed through: %+v", searcher.got)
	}
	if searcher.got.MaxResults == nil || *searcher.got.MaxResults != 20 {
		t.Errorf("max_results not passed through: %+v", searcher.got.MaxResults)
	}
	if !searcher.got.Remote() {
		t.Error("include_remote should default to true")
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"generated_at", "role", "location", "windows", "total_jobs", "search_terms"} {
		if _, ok := body[k]; !ok {
			t.Errorf("response missing %q", k)
		}
	}
}

func TestSearch_InvalidBodies(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDetail string
	}{
		{"malformed json", `{"role":`, http.StatusBadRequest, "Invalid JSON body."},
		{"missing role", `{"skills":["go"]}`, http.StatusBadRequest, "role"},
		{"empty role", `{"role":""}`, http.StatusBadRequest, "/role"},
		{"zero max results", `{"role":"devops","max_results":0}`, http.StatusBadRequest, "/max_results"},
		{"fractional max results", `{"role":"devops","max_results":2.5}`, http.StatusBadRequest, "/max_results"},
		{"skills not strings", `{"role":"devops","skills":[1,2]}`, http.StatusBadRequest, "/skills/0"},
		{"remote not bool", `{"role":"devops","include_remote":"yes"}`, http.StatusBadRequest, "/include_remote"},
		{"not an object", `[]`, http.StatusBadRequest, "Invalid search request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			rec := do(t, newTestServer(t, searcher), http.MethodPost, "/jobs/search", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if d := detail(t, rec); !strings.Contains(d, tt.wantDetail) {
				t.Errorf("detail = %q, want containing %q", d, tt.wantDetail)
			}
			if searcher.got.Role != "" {
				t.Error("search must not run for an invalid body")
			}
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{"unknown role", &model.UnknownRoleError{Key: "astronaut"}, http.StatusBadRequest, msgUnknownRole},
		{"fetch timeout", &model.FetchError{SearchTerm: "x", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, msgFetchTimeout},
		{"fetch failed", &model.FetchError{SearchTerm: "x", Err: &model.HTTPError{StatusCode: 503}}, http.StatusBadGateway, msgFetchFailed},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeSearcher{err: tt.err})
			rec := do(t, h, http.MethodPost, "/jobs/search", `{"role":"devops"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if d := detail(t, rec); d != tt.wantDetail {
				t.Errorf("detail = %q, want %q", d, tt.wantDetail)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{})

	req := httptest.NewRequest(http.MethodOptions, "/jobs/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/jobs/search", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeSearcher{})
	do(t, h, http.MethodGet, "/health", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := `jobscout_http_requests_total{code="200",method="GET",route="/health"} 1`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
