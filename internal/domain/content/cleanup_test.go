package content

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanupCellDefaultsPeriod(t *testing.T) {
	cell := NewCleanupCell(CleanupConfig{Enabled: true})
	assert.Equal(t, CleanupConfig{Enabled: true, PeriodDays: 30}, cell.Get())
}

func TestCleanupCellUpdateKeepsPeriodWhenNonPositive(t *testing.T) {
	cell := NewCleanupCell(CleanupConfig{Enabled: false, PeriodDays: 30})

	updated := cell.Update(true, 7)
	assert.Equal(t, CleanupConfig{Enabled: true, PeriodDays: 7}, updated)

	updated = cell.Update(false, 0)
	assert.Equal(t, CleanupConfig{Enabled: false, PeriodDays: 7}, updated)

	updated = cell.Update(true, -1)
	assert.Equal(t, CleanupConfig{Enabled: true, PeriodDays: 7}, updated)
}

func TestCleanupCellConcurrentAccess(t *testing.T) {
	cell := NewCleanupCell(CleanupConfig{PeriodDays: 30})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(days int) {
			defer wg.Done()
			cell.Update(days%2 == 0, days)
		}(i + 1)
		go func() {
			defer wg.Done()
			cfg := cell.Get()
			assert.Positive(t, cfg.PeriodDays)
		}()
	}
	wg.Wait()
}
