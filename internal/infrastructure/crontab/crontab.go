package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"shareboard/internal/domain/content"
	"shareboard/internal/utils/platformerrors"
)

const sweepTimeout = 10 * time.Minute

// Crontab owns the recycle-bin cleanup schedule: one sweep at startup, then
// hourly. The retention settings are read from the shared cell on every run
// so API updates take effect without a restart.
type Crontab struct {
	ctab     *crontab.Crontab
	contents *content.Service
	cleanup  *content.CleanupCell
	log      zerolog.Logger
}

func NewCrontab(contents *content.Service, cleanup *content.CleanupCell, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:     crontab.New(),
		contents: contents,
		cleanup:  cleanup,
		log:      log.With().Str("component", "crontab").Logger(),
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	// run once on server start
	c.sweep(ctx)

	if err := c.ctab.AddJob("0 * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		c.sweep(jobCtx)
	}); err != nil {
		return platformerrors.NewError(platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal, "failed to schedule cleanup sweep", err)
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) sweep(ctx context.Context) {
	cfg := c.cleanup.Get()
	if !cfg.Enabled {
		return
	}
	purged, err := c.contents.SweepExpired(ctx, time.Now(), cfg)
	if err != nil {
		c.log.Error().Err(err).Msg("cleanup sweep failed")
		return
	}
	c.log.Debug().Int("purged", purged).Msg("cleanup sweep finished")
}
