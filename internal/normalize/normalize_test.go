package normalize

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/dates"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/sponsorship"
)

var refNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(
		dates.NewResolver(func() time.Time { return refNow }),
		sponsorship.NewClassifier(nil, nil),
	)
}

func TestNormalize_PrimaryFields(t *testing.T) {
	n := newTestNormalizer()
	raw := model.RawJob{
		"title":          "Backend Engineer",
		"company":        "Acme",
		"location":       "Austin, TX",
		"job_url_direct": "https://acme.example/jobs/1",
		"job_url":        "https://board.example/view/1",
		"description":    "Build Go services. H1B sponsorship available.",
		"site":           "linkedin",
		"date_posted":    "3 hours ago",
	}

	job, ok := n.Normalize(raw, []string{"Go", "Rust"})
	if !ok {
		t.Fatal("Normalize returned false for a linkable record")
	}
	if job.Link != "https://acme.example/jobs/1" {
		t.Errorf("Link = %q, want job_url_direct", job.Link)
	}
	if job.Title != "Backend Engineer" || job.Company != "Acme" || job.Location != "Austin, TX" {
		t.Errorf("unexpected title/company/location: %q %q %q", job.Title, job.Company, job.Location)
	}
	if job.Source == nil || *job.Source != "linkedin" {
		t.Errorf("Source = %v, want linkedin", job.Source)
	}
	if job.AgeMinutes == nil || *job.AgeMinutes != 180 {
		t.Errorf("AgeMinutes = %v, want 180", job.AgeMinutes)
	}
	if job.DatePosted == nil || *job.DatePosted != "2025-03-14T09:00:00Z" {
		t.Errorf("DatePosted = %v, want 2025-03-14T09:00:00Z", job.DatePosted)
	}
	if job.Sponsorship != model.SponsorshipLikely {
		t.Errorf("Sponsorship = %q, want likely", job.Sponsorship)
	}
	if job.MatchScore == nil || *job.MatchScore != 50 {
		t.Errorf("MatchScore = %v, want 50", job.MatchScore)
	}
	if job.MatchSummary != "Matched 1 of 2 skills: Go" {
		t.Errorf("MatchSummary = %q", job.MatchSummary)
	}
	if job.HireChance != model.HireChanceLow {
		t.Errorf("HireChance = %q, want low", job.HireChance)
	}
	if job.ID != Fingerprint("Backend Engineer", "Acme", "https://acme.example/jobs/1") {
		t.Errorf("ID = %q does not match fingerprint", job.ID)
	}
}

func TestNormalize_AliasesAndDefaults(t *testing.T) {
	n := newTestNormalizer()
	raw := model.RawJob{
		"job_title":         "Data Engineer",
		"company_name":      "Globex",
		"url":               "https://globex.example/careers/7",
		"job_description":   "Pipelines.",
		model.SearchTermKey: "data engineer",
		"date":              "2025-03-13",
		"title":             "",
		"company":           nil,
		"location":          math.NaN(),
	}

	job, ok := n.Normalize(raw, nil)
	if !ok {
		t.Fatal("Normalize returned false")
	}
	if job.Title != "Data Engineer" {
		t.Errorf("Title = %q, want alias job_title", job.Title)
	}
	if job.Company != "Globex" {
		t.Errorf("Company = %q, want alias company_name", job.Company)
	}
	if job.Location != "Unlisted" {
		t.Errorf("Location = %q, want default Unlisted", job.Location)
	}
	if job.Link != "https://globex.example/careers/7" {
		t.Errorf("Link = %q", job.Link)
	}
	if job.Source == nil || *job.Source != "data engineer" {
		t.Errorf("Source = %v, want search term fallback", job.Source)
	}
	if job.AgeMinutes == nil || *job.AgeMinutes != 36*60 {
		t.Errorf("AgeMinutes = %v, want %d", job.AgeMinutes, 36*60)
	}
	if job.MatchScore != nil {
		t.Errorf("MatchScore = %v, want nil without skills", *job.MatchScore)
	}
	if job.MatchSummary != "Provide skills to calculate fit." {
		t.Errorf("MatchSummary = %q", job.MatchSummary)
	}
	if job.HireChance != model.HireChanceUnknown {
		t.Errorf("HireChance = %q, want unknown", job.HireChance)
	}
}

func TestNormalize_MinimalRecord(t *testing.T) {
	n := newTestNormalizer()
	job, ok := n.Normalize(model.RawJob{"link": "https://x.example/1"}, nil)
	if !ok {
		t.Fatal("Normalize returned false")
	}
	if job.Title != "Untitled" || job.Company != "Unknown" || job.Location != "Unlisted" {
		t.Errorf("defaults = %q %q %q", job.Title, job.Company, job.Location)
	}
	if job.DescriptionSnippet != nil {
		t.Errorf("DescriptionSnippet = %q, want nil", *job.DescriptionSnippet)
	}
	if job.DatePosted != nil || job.AgeMinutes != nil {
		t.Error("date fields should be nil when no date is present")
	}
	if job.Source != nil {
		t.Errorf("Source = %q, want nil", *job.Source)
	}
	if job.Sponsorship != model.SponsorshipUnknown {
		t.Errorf("Sponsorship = %q, want unknown", job.Sponsorship)
	}
}

func TestNormalize_MarkupOnlyDescription(t *testing.T) {
	n := newTestNormalizer()
	for _, desc := range []string{"<p></p>", "<div> <br/> </div>", "&nbsp;"} {
		job, ok := n.Normalize(model.RawJob{"link": "https://x.example/1", "description": desc}, nil)
		if !ok {
			t.Fatalf("Normalize(%q) returned false", desc)
		}
		if job.DescriptionSnippet != nil {
			t.Errorf("DescriptionSnippet for %q = %q, want nil", desc, *job.DescriptionSnippet)
		}
	}
}

func TestNormalize_DropsUnlinkable(t *testing.T) {
	n := newTestNormalizer()
	for _, raw := range []model.RawJob{
		{"title": "No Link Engineer", "company": "Acme"},
		{"title": "Blank Link", "job_url": "   "},
		{},
	} {
		if _, ok := n.Normalize(raw, nil); ok {
			t.Errorf("Normalize(%v) should drop records without a link", raw)
		}
	}
}

func TestNormalizeAll_SkipsBadRecords(t *testing.T) {
	n := newTestNormalizer()
	raws := []model.RawJob{
		{"title": "A", "job_url": "https://x.example/a", "date_posted": "not a date"},
		{"title": "B"},
		{"title": "C", "job_url": "https://x.example/c", "date_posted": 42.5},
	}

	jobs, dropped := n.NormalizeAll(raws, []string{"go"})
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(jobs) != 2 || jobs[0].Title != "A" || jobs[1].Title != "C" {
		t.Fatalf("jobs = %+v, want A and C in order", jobs)
	}
	if jobs[0].AgeMinutes != nil {
		t.Errorf("unparseable date should give nil age, got %d", *jobs[0].AgeMinutes)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("Backend Engineer", "Acme", "https://acme.example/jobs/1")
	b := Fingerprint("Backend Engineer", "Acme", "https://acme.example/jobs/1")
	if a != b {
		t.Errorf("Fingerprint not deterministic: %q vs %q", a, b)
	}
	if len(a) != 12 {
		t.Errorf("len(Fingerprint) = %d, want 12", len(a))
	}
	if strings.Trim(a, "0123456789abcdef") != "" {
		t.Errorf("Fingerprint %q is not lowercase hex", a)
	}
	if Fingerprint("Backend Engineer", "Acme", "https://acme.example/jobs/2") == a {
		t.Error("different links should give different fingerprints")
	}
}

func TestSnippet(t *testing.T) {
	n := newTestNormalizer()

	short := n.snippet("  Build   things\n\twith Go.  ")
	if short != "Build things with Go." {
		t.Errorf("snippet = %q", short)
	}

	markup := n.snippet("<p>Own the <b>API</b> &amp; tooling.</p><p>Remote</p>")
	if markup != "Own the API & tooling. Remote" {
		t.Errorf("snippet = %q", markup)
	}

	long := n.snippet(strings.Repeat("word ", 100))
	if len([]rune(long)) > 220 {
		t.Errorf("snippet length = %d, want <= 220", len([]rune(long)))
	}
	if !strings.HasSuffix(long, "...") {
		t.Errorf("long snippet should end with ellipsis: %q", long)
	}
	if strings.HasSuffix(strings.TrimSuffix(long, "..."), " ") {
		t.Error("snippet should trim trailing space before the ellipsis")
	}
}
