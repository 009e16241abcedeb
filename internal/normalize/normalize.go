// Package normalize maps raw, inconsistently shaped job records onto
// model.JobSummary.
package normalize

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/amishk599/jobscout/internal/dates"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/scoring"
	"github.com/amishk599/jobscout/internal/sponsorship"
)

const (
	snippetLimit = 220
	idLength     = 12
)

// Candidate keys per logical field, tried in order.
var (
	titleKeys       = []string{"title", "job_title"}
	companyKeys     = []string{"company", "company_name"}
	locationKeys    = []string{"location", "job_location"}
	linkKeys        = []string{"job_url_direct", "job_url", "link", "url"}
	descriptionKeys = []string{"description", "job_description"}
	sourceKeys      = []string{"site", "source", model.SearchTermKey}
	postedKeys      = []string{"date_posted", "date"}
)

const (
	defaultTitle    = "Untitled"
	defaultCompany  = "Unknown"
	defaultLocation = "Unlisted"
)

// Normalizer turns raw records into job summaries.
type Normalizer struct {
	dates      *dates.Resolver
	classifier *sponsorship.Classifier
	sanitizer  *bluemonday.Policy
}

// NewNormalizer wires a normalizer from its date resolver and sponsorship
// classifier.
func NewNormalizer(resolver *dates.Resolver, classifier *sponsorship.Classifier) *Normalizer {
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AddSpaceWhenStrippingTag(true)
	return &Normalizer{
		dates:      resolver,
		classifier: classifier,
		sanitizer:  sanitizer,
	}
}

// Normalize maps one raw record. It returns false when the record has no
// usable link; every other gap falls back to a default.
func (n *Normalizer) Normalize(raw model.RawJob, skills []string) (model.JobSummary, bool) {
	link, ok := lookupString(raw, linkKeys)
	if !ok {
		return model.JobSummary{}, false
	}

	title := stringOr(raw, titleKeys, defaultTitle)
	company := stringOr(raw, companyKeys, defaultCompany)
	location := stringOr(raw, locationKeys, defaultLocation)
	description := stringOr(raw, descriptionKeys, "")

	var source *string
	if s, ok := lookupString(raw, sourceKeys); ok {
		source = &s
	}

	postedValue, _ := lookup(raw, postedKeys)
	postedAt := n.dates.Resolve(postedValue)

	match := scoring.Match(title+". "+description, skills)

	job := model.JobSummary{
		ID:           Fingerprint(title, company, link),
		Title:        title,
		Company:      company,
		Location:     location,
		Link:         link,
		AgeMinutes:   n.dates.AgeMinutes(postedAt),
		Sponsorship:  n.classifier.Classify(title + " " + description),
		MatchScore:   match.Score,
		MatchSummary: scoring.MatchSummary(match),
		HireChance:   scoring.ChanceOfHire(match.Score),
		Source:       source,
	}
	if s := n.snippet(description); s != "" {
		job.DescriptionSnippet = &s
	}
	if postedAt != nil {
		s := postedAt.Format(time.RFC3339)
		job.DatePosted = &s
	}
	return job, true
}

// NormalizeAll maps every record, skipping the ones without a link. It
// returns the summaries in input order and how many records were dropped.
func (n *Normalizer) NormalizeAll(raws []model.RawJob, skills []string) ([]model.JobSummary, int) {
	jobs := make([]model.JobSummary, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		job, ok := n.Normalize(raw, skills)
		if !ok {
			dropped++
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, dropped
}

// Fingerprint is the stable id of a posting: the first 12 hex characters of
// SHA-1 over "title|company|link".
func Fingerprint(title, company, link string) string {
	sum := sha1.Sum([]byte(title + "|" + company + "|" + link))
	return hex.EncodeToString(sum[:])[:idLength]
}

// snippet strips markup, collapses whitespace and truncates to snippetLimit
// runes with a trailing ellipsis.
func (n *Normalizer) snippet(description string) string {
	plain := html.UnescapeString(n.sanitizer.Sanitize(description))
	cleaned := strings.Join(strings.Fields(plain), " ")

	runes := []rune(cleaned)
	if len(runes) <= snippetLimit {
		return cleaned
	}
	return strings.TrimRight(string(runes[:snippetLimit-3]), " \t\n") + "..."
}

func lookup(raw model.RawJob, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || !present(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func lookupString(raw model.RawJob, keys []string) (string, bool) {
	v, ok := lookup(raw, keys)
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), true
	}
	return fmt.Sprint(v), true
}

func stringOr(raw model.RawJob, keys []string, fallback string) string {
	if s, ok := lookupString(raw, keys); ok {
		return s
	}
	return fallback
}

// present reports whether a raw value carries data. Nil, NaN, blank strings
// and false are treated as missing, the same way empty cells come back from
// scrapers.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return !math.IsNaN(t)
	case bool:
		return t
	case *time.Time:
		return t != nil
	default:
		return true
	}
}
