package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guild-sync/core/directory"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sweep syncs every member of a subscriber community. Bots are skipped, a
// failing member never stops the sweep, and progress is reported after each
// member. With more than one sweep worker members run concurrently, but
// progress callbacks are serialized and the report keeps listing order.
func (e *Engine) Sweep(ctx context.Context, guildID string, progress func(Progress)) *SweepReport {
	report := &SweepReport{
		GuildID:   guildID,
		Success:   true,
		Members:   []MemberOutcome{},
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}
	log := e.logger.With(zap.String("guild_id", guildID))

	members, err := e.directory.Members(ctx, guildID)
	if err != nil {
		log.Error("Failed to list members", zap.Error(err))
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("could not list members of %s", guildID))
		report.FinishedAt = time.Now().UTC()
		return report
	}
	report.Total = len(members)
	log.Info("Sweep started", zap.Int("members", len(members)))

	outcomes := make([]MemberOutcome, len(members))
	processed := make([]bool, len(members))

	var (
		mu   sync.Mutex
		done int
	)
	finish := func(i int, outcome MemberOutcome) {
		mu.Lock()
		defer mu.Unlock()

		outcomes[i] = outcome
		processed[i] = true
		done++
		if progress != nil {
			progress(Progress{Done: done, Total: len(members), Member: outcome})
		}
	}

	workers := e.cfg.SweepWorkers
	if workers <= 1 {
		for i, m := range members {
			if ctx.Err() != nil {
				break
			}
			finish(i, e.sweepMember(ctx, guildID, m))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, m := range members {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				finish(i, e.sweepMember(gctx, guildID, m))
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, outcome := range outcomes {
		if processed[i] {
			report.record(outcome)
		}
	}
	if err := ctx.Err(); err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("sweep stopped after %d of %d members: %v", done, len(members), err))
	}

	report.FinishedAt = time.Now().UTC()
	log.Info("Sweep finished",
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report
}

func (e *Engine) sweepMember(ctx context.Context, guildID string, m *directory.Member) MemberOutcome {
	outcome := MemberOutcome{UserID: m.User.ID, Username: m.User.Username}
	if m.User.Bot {
		outcome.Status = MemberSkipped
		return outcome
	}

	result := e.SyncUser(ctx, guildID, m.User)
	if result.Success {
		outcome.Status = MemberSynced
		return outcome
	}
	outcome.Status = MemberFailed
	outcome.Errors = result.Errors
	return outcome
}
