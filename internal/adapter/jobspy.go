package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	jobSpySearchPath = "/api/v1/search_jobs"
	maxBodyBytes     = 32 << 20
)

// JobSpySource fetches postings from a JobSpy-compatible scraping service.
type JobSpySource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ model.JobSource = (*JobSpySource)(nil)

// NewJobSpySource creates a source for the service at baseURL. apiKey is sent
// as x-api-key when non-empty.
func NewJobSpySource(baseURL, apiKey string, client *http.Client) *JobSpySource {
	return &JobSpySource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name identifies the source for rate limiting and logs.
func (s *JobSpySource) Name() string {
	return "jobspy"
}

// Fetch runs one search against the service and returns its raw records.
func (s *JobSpySource) Fetch(ctx context.Context, q model.Query) ([]model.RawJob, error) {
	endpoint := s.baseURL + jobSpySearchPath + "?" + searchParams(q).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("jobspy fetch for %q: %w", q.SearchTerm, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("x-api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobspy fetch for %q: %w", q.SearchTerm, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("jobspy fetch for %q: unexpected status %d", q.SearchTerm, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("jobspy fetch for %q: %w", q.SearchTerm, err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("jobspy fetch for %q: %w", q.SearchTerm, err)
	}
	return records, nil
}

func searchParams(q model.Query) url.Values {
	v := url.Values{}
	for _, site := range q.Sites {
		v.Add("site_name", site)
	}
	v.Set("search_term", q.SearchTerm)
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.MaxResults > 0 {
		v.Set("results_wanted", strconv.Itoa(q.MaxResults))
	}
	if q.HoursOld > 0 {
		v.Set("hours_old", strconv.Itoa(q.HoursOld))
	}
	v.Set("is_remote", strconv.FormatBool(q.IncludeRemote))
	return v
}
