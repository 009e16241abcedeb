package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	windowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)

	jobTitleStyle = lipgloss.NewStyle().
			Bold(true)

	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// renderResponse prints window counts, then every job once in age order
// under the narrowest window that holds it.
func renderResponse(w io.Writer, resp *model.SearchResponse) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s · %s", resp.Role.Label, resp.Location)))
	fmt.Fprintln(w, mutedStyle.Render("terms: "+strings.Join(resp.SearchTerms, ", ")))

	counts := make([]string, len(resp.Windows))
	for i, win := range resp.Windows {
		counts[i] = fmt.Sprintf("%s: %d", win.Label, win.Count)
	}
	fmt.Fprintln(w, mutedStyle.Render(strings.Join(counts, " | ")))
	fmt.Fprintln(w)

	if resp.TotalJobs == 0 {
		fmt.Fprintln(w, "No postings found.")
		return
	}

	seen := make(map[string]bool, resp.TotalJobs)
	for _, win := range resp.Windows {
		var fresh []model.JobSummary
		for _, j := range win.Jobs {
			if !seen[j.Link] {
				seen[j.Link] = true
				fresh = append(fresh, j)
			}
		}
		if len(fresh) == 0 {
			continue
		}

		fmt.Fprintln(w, windowStyle.Render(win.Label))
		for _, j := range fresh {
			renderJob(w, j)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d postings\n", resp.TotalJobs)
}

func renderJob(w io.Writer, j model.JobSummary) {
	fmt.Fprintf(w, "  %s  %s\n", formatAge(j.AgeMinutes), jobTitleStyle.Render(j.Title))
	fmt.Fprintf(w, "        %s · %s · sponsorship %s · fit %s\n",
		j.Company, j.Location, j.Sponsorship, renderFit(j))
	fmt.Fprintln(w, "        "+mutedStyle.Render(j.Link))
}

func renderFit(j model.JobSummary) string {
	if j.MatchScore == nil {
		return "n/a"
	}
	label := fmt.Sprintf("%d%% (%s)", *j.MatchScore, j.HireChance)
	switch j.HireChance {
	case model.HireChanceHigh:
		return highStyle.Render(label)
	case model.HireChanceMedium:
		return mediumStyle.Render(label)
	default:
		return lowStyle.Render(label)
	}
}

// formatAge renders an age compactly: 45m, 3h, or "?" when unknown.
func formatAge(minutes *int) string {
	if minutes == nil {
		return fmt.Sprintf("%4s", "?")
	}
	m := *minutes
	if m < 60 {
		return fmt.Sprintf("%4s", fmt.Sprintf("%dm", m))
	}
	return fmt.Sprintf("%4s", fmt.Sprintf("%dh", m/60))
}
