// Package dedupe collapses postings that point at the same listing.
package dedupe

import "github.com/amishk599/jobscout/internal/model"

// ByLink returns jobs with repeated links removed. The first occurrence of
// each link is kept and survivors stay in their original order.
func ByLink(jobs []model.JobSummary) []model.JobSummary {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		if _, dup := seen[job.Link]; dup {
			continue
		}
		seen[job.Link] = struct{}{}
		out = append(out, job)
	}
	return out
}
