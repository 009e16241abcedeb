package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// decodeRecords accepts either a bare JSON array of objects or an envelope of
// the form {"jobs": [...]}.
func decodeRecords(body []byte) ([]model.RawJob, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty body")
	}

	switch trimmed[0] {
	case '[':
		var records []model.RawJob
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return compact(records), nil
	case '{':
		var envelope struct {
			Jobs []model.RawJob `json:"jobs"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return compact(envelope.Jobs), nil
	default:
		return nil, fmt.Errorf("decode records: unexpected leading byte %q", trimmed[0])
	}
}

// compact drops null array entries so callers only see real records.
func compact(records []model.RawJob) []model.RawJob {
	out := make([]model.RawJob, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
