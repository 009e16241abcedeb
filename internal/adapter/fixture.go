package adapter

import (
	"context"
	"fmt"
	"os"

	"github.com/amishk599/jobscout/internal/model"
)

// FixtureSource serves records from a JSON file on disk. Every query gets the
// full file; the file is re-read per call so it can be edited between runs.
type FixtureSource struct {
	path string
}

var _ model.JobSource = (*FixtureSource)(nil)

// NewFixtureSource creates a source backed by the JSON file at path.
func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{path: path}
}

// Name identifies the source for rate limiting and logs.
func (s *FixtureSource) Name() string {
	return "fixture"
}

// Fetch returns every record in the fixture file.
func (s *FixtureSource) Fetch(ctx context.Context, q model.Query) ([]model.RawJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("fixture fetch for %q: %w", q.SearchTerm, err)
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", s.path, err)
	}
	return records, nil
}
