package sponsorship

import (
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultNegative lists phrases that rule sponsorship out.
var DefaultNegative = []string{
	"no sponsorship",
	"without sponsorship",
	"unable to sponsor",
	"cannot sponsor",
	"no visa",
	"must be authorized",
	"no c2c",
	"no corp to corp",
}

// DefaultPositive lists phrases that suggest sponsorship is available.
var DefaultPositive = []string{
	"h1b",
	"h-1b",
	"visa sponsorship",
	"sponsorship available",
	"sponsor",
	"opt",
	"cpt",
	"stem opt",
	"work visa",
}

// Classifier tags posting text with a coarse sponsorship likelihood.
// Matching is case-insensitive substring containment and negative phrases
// win over positive ones.
type Classifier struct {
	negative []string
	positive []string
}

// NewClassifier returns a classifier over the given phrase lists. Empty lists
// fall back to the defaults.
func NewClassifier(negative, positive []string) *Classifier {
	if len(negative) == 0 {
		negative = DefaultNegative
	}
	if len(positive) == 0 {
		positive = DefaultPositive
	}
	return &Classifier{
		negative: lowerAll(negative),
		positive: lowerAll(positive),
	}
}

// Classify returns model.SponsorshipUnlikely, model.SponsorshipLikely or
// model.SponsorshipUnknown for text.
func (c *Classifier) Classify(text string) string {
	lowered := strings.ToLower(text)
	if containsAny(lowered, c.negative) {
		return model.SponsorshipUnlikely
	}
	if containsAny(lowered, c.positive) {
		return model.SponsorshipLikely
	}
	return model.SponsorshipUnknown
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
