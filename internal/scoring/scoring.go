// Package scoring matches a candidate's skill list against posting text.
package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

const summaryPreview = 5

var nonWordRegex = regexp.MustCompile(`[^a-z0-9+#./ ]+`)

// normalizeText lowercases text, blanks out everything but the characters
// that appear in skill names (c++, c#, node.js, ci/cd) and collapses spaces.
func normalizeText(text string) string {
	cleaned := nonWordRegex.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Join(strings.Fields(cleaned), " ")
}

func tokenize(normalized string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		if len(tok) > 1 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// Match scores jobText against skills. Single-word skills must appear as a
// whole token; multi-word skills match as a phrase. Skills that normalize to
// nothing are ignored.
func Match(jobText string, skills []string) model.MatchResult {
	result := model.MatchResult{Matched: []string{}, Missing: []string{}}
	if len(skills) == 0 {
		return result
	}

	normalizedJob := normalizeText(jobText)
	tokens := tokenize(normalizedJob)

	for _, skill := range skills {
		ns := normalizeText(skill)
		if ns == "" {
			continue
		}

		var hit bool
		if strings.Contains(ns, " ") {
			hit = strings.Contains(normalizedJob, ns)
		} else {
			_, hit = tokens[ns]
		}

		if hit {
			result.Matched = append(result.Matched, skill)
		} else {
			result.Missing = append(result.Missing, skill)
		}
	}

	total := len(result.Matched) + len(result.Missing)
	if total == 0 {
		return result
	}
	score := int(math.RoundToEven(float64(len(result.Matched)) / float64(total) * 100))
	result.Score = &score
	return result
}

// ChanceOfHire maps a match score to a coarse hire-chance tag.
func ChanceOfHire(score *int) string {
	switch {
	case score == nil:
		return model.HireChanceUnknown
	case *score >= 75:
		return model.HireChanceHigh
	case *score >= 55:
		return model.HireChanceMedium
	default:
		return model.HireChanceLow
	}
}

// MatchSummary renders a one-line human summary of a match result.
func MatchSummary(r model.MatchResult) string {
	if r.Score == nil {
		return "Provide skills to calculate fit."
	}
	if len(r.Matched) == 0 {
		return "No matching skills found."
	}

	preview := r.Matched
	extra := ""
	if len(preview) > summaryPreview {
		preview = preview[:summaryPreview]
		extra = "..."
	}
	total := len(r.Matched) + len(r.Missing)
	return fmt.Sprintf("Matched %d of %d skills: %s%s", len(r.Matched), total, strings.Join(preview, ", "), extra)
}
