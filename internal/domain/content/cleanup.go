package content

import "sync"

// CleanupConfig controls the recycle bin expiry sweep. It is process-wide and
// intentionally not persisted: it resets to configured defaults on restart.
type CleanupConfig struct {
	Enabled    bool `json:"enabled"`
	PeriodDays int  `json:"periodDays"`
}

// CleanupCell is a lock-guarded cell shared by the settings handler and the
// sweep job. Both operate through it so the timer and the update endpoint
// cannot race.
type CleanupCell struct {
	mu  sync.RWMutex
	cfg CleanupConfig
}

func NewCleanupCell(initial CleanupConfig) *CleanupCell {
	if initial.PeriodDays <= 0 {
		initial.PeriodDays = 30
	}
	return &CleanupCell{cfg: initial}
}

// Get returns a snapshot of the current config.
func (c *CleanupCell) Get() CleanupConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Update replaces the enabled flag and, when positive, the retention period.
// Returns the resulting config.
func (c *CleanupCell) Update(enabled bool, periodDays int) CleanupConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Enabled = enabled
	if periodDays > 0 {
		c.cfg.PeriodDays = periodDays
	}
	return c.cfg
}
