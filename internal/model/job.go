package model

import (
	"context"
	"time"
)

// SearchTermKey is the key under which the search term that produced a raw
// record is stored on that record.
const SearchTermKey = "_search_term"

// RawJob is one untyped job record as returned by a source. Field names vary
// between boards and any field may be missing.
type RawJob map[string]any

// Role is a role profile from the static catalog.
type Role struct {
	Key             string   `json:"key" yaml:"key"`
	Label           string   `json:"label" yaml:"label"`
	ExperienceLevel string   `json:"experience_level" yaml:"experience_level"`
	SearchTerms     []string `json:"search_terms" yaml:"search_terms"`
}

// Query describes one fetch against a JobSource.
type Query struct {
	SearchTerm    string
	Location      string
	HoursOld      int
	MaxResults    int
	IncludeRemote bool
	Sites         []string
}

// Sponsorship values.
const (
	SponsorshipLikely   = "likely"
	SponsorshipUnlikely = "unlikely"
	SponsorshipUnknown  = "unknown"
)

// Hire chance values.
const (
	HireChanceHigh    = "high"
	HireChanceMedium  = "medium"
	HireChanceLow     = "low"
	HireChanceUnknown = "unknown"
)

// MatchResult is the outcome of scoring job text against a skill list.
// Score is nil when no effective skills were supplied.
type MatchResult struct {
	Score   *int
	Matched []string
	Missing []string
}

// JobSummary is the canonical, normalized representation of a posting.
type JobSummary struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Company            string  `json:"company"`
	Location           string  `json:"location"`
	Link               string  `json:"link"`
	DescriptionSnippet *string `json:"description_snippet"`
	DatePosted         *string `json:"date_posted"`
	AgeMinutes         *int    `json:"age_minutes"`
	Sponsorship        string  `json:"sponsorship"`
	MatchScore         *int    `json:"match_score"`
	MatchSummary       string  `json:"match_summary"`
	HireChance         string  `json:"hire_chance"`
	Source             *string `json:"source"`
}

// Window is one recency bucket of a search response.
type Window struct {
	Label   string       `json:"label"`
	Minutes int          `json:"minutes"`
	Count   int          `json:"count"`
	Jobs    []JobSummary `json:"jobs"`
}

// SearchRequest is a client search. Nil pointers mean "use the default".
type SearchRequest struct {
	Role          string   `json:"role"`
	Location      *string  `json:"location"`
	IncludeRemote *bool    `json:"include_remote"`
	Skills        []string `json:"skills"`
	MaxResults    *int     `json:"max_results"`
}

// Remote reports the effective include-remote flag (default true).
func (r SearchRequest) Remote() bool {
	if r.IncludeRemote == nil {
		return true
	}
	return *r.IncludeRemote
}

// SearchResponse is the envelope returned to the frontend.
type SearchResponse struct {
	GeneratedAt string   `json:"generated_at"`
	Role        Role     `json:"role"`
	Location    string   `json:"location"`
	Windows     []Window `json:"windows"`
	TotalJobs   int      `json:"total_jobs"`
	SearchTerms []string `json:"search_terms"`
}

// JobSource fetches raw job records for one search term.
type JobSource interface {
	Fetch(ctx context.Context, q Query) ([]RawJob, error)
}

// RoleCatalog resolves role keys to profiles.
type RoleCatalog interface {
	Lookup(key string) (Role, bool)
	All() []Role
}

// Clock returns the current time. Components take one so tests can pin "now".
type Clock func() time.Time
