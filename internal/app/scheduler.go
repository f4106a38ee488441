package app

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/finaos/internal/services/scout"
)

// StartScoutScheduler runs a sync-then-scan pass on the configured
// interval. A zero interval disables scheduling.
func (a *App) StartScoutScheduler() {
	interval := a.Config.Scout.GetScanInterval()
	if interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.schedulerCancel = cancel

	a.Logger.Info().Dur("interval", interval).Msg("Scout scheduler started")
	go a.runScoutLoop(ctx, interval)
}

func (a *App) runScoutLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Logger.Info().Msg("Scout scheduler: stopped")
			return
		case <-ticker.C:
			a.runScheduledScan(ctx)
		}
	}
}

func (a *App) runScheduledScan(ctx context.Context) {
	start := time.Now()

	if result, err := a.SyncService.SyncAll(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Scheduled sync failed; scanning stored holdings")
	} else {
		a.Logger.Debug().Int("synced", result.Synced).Int("lots", result.Lots).Msg("Scheduled sync complete")
	}

	report, err := a.ScoutService.Scan(ctx)
	if err != nil {
		if errors.Is(err, scout.ErrNoHoldings) {
			a.Logger.Warn().Msg("Scheduled scan: no holdings in vault")
			return
		}
		a.Logger.Error().Err(err).Msg("Scheduled scan failed")
		return
	}

	a.Logger.Info().
		Int("positions", len(report.Positions)).
		Int("candidates", len(report.Candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("Scheduled scan complete")
}
