// Package window groups postings into nested recency buckets.
package window

import (
	"slices"

	"github.com/amishk599/jobscout/internal/model"
)

// Definition is one recency bucket: a label and an inclusive age ceiling.
type Definition struct {
	Label   string
	Minutes int
}

// Definitions are the buckets of every response, narrowest first. The last
// one also collects postings whose age is unknown.
var Definitions = []Definition{
	{Label: "Last 20 minutes", Minutes: 20},
	{Label: "Last 1 hour", Minutes: 60},
	{Label: "Last 3 hours", Minutes: 180},
	{Label: "Last 5 hours", Minutes: 300},
	{Label: "Last 10 hours", Minutes: 600},
	{Label: "Last 25 hours", Minutes: 1500},
}

// SortByAge orders jobs freshest first, in place. Jobs with an unknown age
// come after every job with a known one; ties keep their input order.
func SortByAge(jobs []model.JobSummary) {
	slices.SortStableFunc(jobs, func(a, b model.JobSummary) int {
		switch {
		case a.AgeMinutes == nil && b.AgeMinutes == nil:
			return 0
		case a.AgeMinutes == nil:
			return 1
		case b.AgeMinutes == nil:
			return -1
		default:
			return *a.AgeMinutes - *b.AgeMinutes
		}
	})
}

// Bucket computes every window over jobs, which should already be sorted by
// SortByAge. Windows nest: a job appears in every window wide enough for it.
func Bucket(jobs []model.JobSummary) []model.Window {
	windows := make([]model.Window, 0, len(Definitions))
	for i, def := range Definitions {
		widest := i == len(Definitions)-1
		members := make([]model.JobSummary, 0)
		for _, job := range jobs {
			if job.AgeMinutes == nil {
				if widest {
					members = append(members, job)
				}
				continue
			}
			if *job.AgeMinutes <= def.Minutes {
				members = append(members, job)
			}
		}
		windows = append(windows, model.Window{
			Label:   def.Label,
			Minutes: def.Minutes,
			Count:   len(members),
			Jobs:    members,
		})
	}
	return windows
}
