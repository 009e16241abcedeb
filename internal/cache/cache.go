// Package cache holds raw fetch results between searches.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultTTL is how long fetched records stay fresh.
const DefaultTTL = 300 * time.Second

// Cache stores raw records per search key.
type Cache interface {
	// Get returns the records for key if they are still fresh.
	Get(ctx context.Context, key string) ([]model.RawJob, bool, error)
	// Set stores records under key, replacing whatever was there.
	Set(ctx context.Context, key string, jobs []model.RawJob) error
}

// Key builds the cache key for a search.
func Key(roleKey, location string, includeRemote bool, maxResults int) string {
	return fmt.Sprintf("%s:%s:%t:%d", roleKey, location, includeRemote, maxResults)
}
