package sync

import (
	"context"

	"guild-sync/core/directory"
	"guild-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Syncer is the part of the reconcile engine the service drives.
type Syncer interface {
	SyncUser(ctx context.Context, guildID string, user directory.User) *reconcile.Result
	Sweep(ctx context.Context, guildID string, progress func(reconcile.Progress)) *reconcile.SweepReport
}

// SweepRun is the outcome of a community sweep request.
type SweepRun struct {
	Report *reconcile.SweepReport
	// ArchiveKey is the object key of the stored report, empty when the
	// archive is disabled or the upload failed.
	ArchiveKey string
	// Shared is true when the request joined a sweep that was already running.
	Shared bool
}

// Service runs member syncs and community sweeps.
type Service struct {
	engine   Syncer
	archiver *Archiver
	logger   *zap.Logger
	sweeps   singleflight.Group
}

// NewService creates a sync service. archiver may be nil.
func NewService(engine Syncer, archiver *Archiver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, archiver: archiver, logger: logger}
}

// Archiver returns the report archiver, nil when archiving is disabled.
func (s *Service) Archiver() *Archiver {
	return s.archiver
}

// SyncMember reconciles one user of a community.
func (s *Service) SyncMember(ctx context.Context, guildID, userID string) *reconcile.Result {
	return s.engine.SyncUser(ctx, guildID, directory.User{ID: userID})
}

// Sweep reconciles every member of a community. Concurrent sweeps of the same
// community share one run; progress is only reported to the caller that
// started it.
func (s *Service) Sweep(ctx context.Context, guildID string, progress func(reconcile.Progress)) SweepRun {
	v, _, shared := s.sweeps.Do(guildID, func() (any, error) {
		report := s.engine.Sweep(ctx, guildID, progress)
		run := SweepRun{Report: report}
		if s.archiver != nil {
			key, err := s.archiver.Store(ctx, report)
			if err != nil {
				s.logger.Error("Failed to archive sweep report", zap.String("guild_id", guildID), zap.Error(err))
			} else {
				run.ArchiveKey = key
			}
		}
		return run, nil
	})

	run := v.(SweepRun)
	run.Shared = shared
	return run
}
