package cache

import (
	"sort"

	"github.com/rs/zerolog"
)

// CleanupJob sweeps expired entries from a set of named stores.
// Expiry is enforced on read, so the sweep only bounds memory.
type CleanupJob struct {
	stores map[string]Store
	log    zerolog.Logger
}

// NewCleanupJob creates a cleanup job over the given stores, keyed by a
// name used in log output
func NewCleanupJob(stores map[string]Store, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		stores: stores,
		log:    log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run removes expired entries from every store
func (j *CleanupJob) Run() error {
	names := make([]string, 0, len(j.stores))
	for name := range j.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		removed := j.stores[name].Cleanup()
		if removed > 0 {
			j.log.Debug().Str("store", name).Int("removed", removed).Msg("Removed expired cache entries")
		}
		total += removed
	}
	if total > 0 {
		j.log.Info().Int("total_removed", total).Msg("Cache cleanup completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
