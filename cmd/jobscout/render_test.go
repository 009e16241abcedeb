package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amishk599/jobscout/internal/model"
)

func intPtr(v int) *int { return &v }

func TestFormatAge(t *testing.T) {
	tests := []struct {
		in   *int
		want string
	}{
		{nil, "   ?"},
		{intPtr(0), "  0m"},
		{intPtr(59), " 59m"},
		{intPtr(60), "  1h"},
		{intPtr(1499), " 24h"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.in); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderResponse_ListsEachJobOnce(t *testing.T) {
	fresh := model.JobSummary{Title: "Backend Engineer", Company: "Acme", Link: "https://a.example/1", AgeMinutes: intPtr(10)}
	old := model.JobSummary{Title: "SRE", Company: "Beta", Link: "https://b.example/2", AgeMinutes: intPtr(400)}
	resp := &model.SearchResponse{
		Role:        model.Role{Label: "Backend Engineer (Mid)"},
		Location:    "United States",
		SearchTerms: []string{"backend engineer"},
		TotalJobs:   2,
		Windows: []model.Window{
			{Label: "Last 20 minutes", Minutes: 20, Count: 1, Jobs: []model.JobSummary{fresh}},
			{Label: "Last 10 hours", Minutes: 600, Count: 2, Jobs: []model.JobSummary{fresh, old}},
		},
	}

	var buf bytes.Buffer
	renderResponse(&buf, resp)
	out := buf.String()

	if n := strings.Count(out, "https://a.example/1"); n != 1 {
		t.Errorf("fresh job printed %d times, want 1", n)
	}
	if !strings.Contains(out, "https://b.example/2") {
		t.Error("older job missing from output")
	}
	if !strings.Contains(out, "Total: 2 postings") {
		t.Errorf("missing total line in:\n%s", out)
	}
}

func TestRenderResponse_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderResponse(&buf, &model.SearchResponse{Role: model.Role{Label: "QA"}, Windows: []model.Window{}})
	if !strings.Contains(buf.String(), "No postings found.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}
