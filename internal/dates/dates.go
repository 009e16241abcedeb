// Package dates resolves the many shapes of "posted" values that job boards
// return into absolute UTC instants.
package dates

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/amishk599/jobscout/internal/model"
)

var relativeRegex = regexp.MustCompile(`(\d+)\s*(minute|hour|day|week)s?`)

var unitDurations = map[string]time.Duration{
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
	"week":   7 * 24 * time.Hour,
}

// Resolver converts posted-date values relative to its clock.
type Resolver struct {
	now model.Clock
}

// NewResolver returns a Resolver. A nil clock uses time.Now.
func NewResolver(now model.Clock) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// Resolve returns the instant a value describes, or nil when it cannot be
// determined. It never fails: unparseable input resolves to nil.
func (r *Resolver) Resolve(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		t := v.UTC()
		return &t
	case *time.Time:
		if v == nil {
			return nil
		}
		t := v.UTC()
		return &t
	case string:
		return r.resolveText(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return r.resolveText(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return r.resolveText(fmt.Sprint(v))
	}
}

func (r *Resolver) resolveText(raw string) *time.Time {
	trimmed := strings.TrimSpace(raw)
	text := strings.ToLower(trimmed)
	if text == "" {
		return nil
	}

	now := r.now().UTC()
	switch text {
	case "just posted", "today":
		return &now
	case "yesterday":
		t := now.Add(-24 * time.Hour)
		return &t
	}

	if m := relativeRegex.FindStringSubmatch(text); m != nil {
		// Offsets too large for a time.Duration are unresolvable.
		n, err := strconv.ParseInt(m[1], 10, 64)
		unit := unitDurations[m[2]]
		if err != nil || unit == 0 || n > math.MaxInt64/int64(unit) {
			return nil
		}
		t := now.Add(-time.Duration(n) * unit)
		return &t
	}

	// Naive timestamps are read as UTC.
	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// AgeMinutes returns whole minutes elapsed since t, or nil when t is nil.
// Instants in the future report an age of zero.
func (r *Resolver) AgeMinutes(t *time.Time) *int {
	if t == nil {
		return nil
	}
	age := int(math.Floor(r.now().Sub(*t).Seconds() / 60))
	if age < 0 {
		age = 0
	}
	return &age
}
