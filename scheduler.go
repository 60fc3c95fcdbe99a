package main

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

type ownerLister interface {
	Owners(ctx context.Context) ([]string, error)
}

type mirrorer interface {
	Mirror(ctx context.Context, owner string) error
}

// startSnapshotScheduler mirrors every owner's records into the local store on
// spec. An empty spec disables the job and returns a nil scheduler.
func startSnapshotScheduler(spec string, owners ownerLister, m mirrorer) (*cron.Cron, error) {
	if spec == "" {
		logger.Info().Msg("Snapshot job disabled")
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		n, err := snapshotOwners(ctx, owners, m)
		if err != nil {
			logger.Error().Err(err).Int("mirrored", n).Msg("Snapshot job failed")
			return
		}
		logger.Info().Int("mirrored", n).Msg("Local snapshots updated")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	logger.Info().Str("schedule", spec).Msg("Snapshot job scheduled")
	return c, nil
}

// snapshotOwners mirrors each owner in turn and returns how many succeeded.
// A failed owner is logged and skipped; listing failures abort the run.
func snapshotOwners(ctx context.Context, owners ownerLister, m mirrorer) (int, error) {
	list, err := owners.Owners(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, owner := range list {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := m.Mirror(ctx, owner); err != nil {
			logger.Warn().Err(err).Str("owner", owner).Msg("Failed to mirror owner records")
			continue
		}
		n++
	}
	return n, nil
}
