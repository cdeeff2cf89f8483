package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"guild-sync/core/bot"
	"guild-sync/core/reconcile"
	"guild-sync/core/utils"
	guildsync "guild-sync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync guild command
	archiveReport bool
	yesSweep      bool
)

// syncCmd is the parent command for sync operations.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync members of a subscriber server from the terminal",
}

var syncUserCmd = &cobra.Command{
	Use:   "user <guild> <user>",
	Short: "Sync one member of a subscriber server",
	Args:  cobra.ExactArgs(2),
	RunE:  runSyncUser,
}

var syncGuildCmd = &cobra.Command{
	Use:   "guild <guild>",
	Short: "Sync every member of a subscriber server",
	Long: `Sync every member of a subscriber server.

Examples:
  # Sweep with interactive confirmation
  sync guild 123456789012345678

  # Sweep non-interactively and store the report in object storage
  sync guild 123456789012345678 --yes --archive`,
	Args: cobra.ExactArgs(1),
	RunE: runSyncGuild,
}

func init() {
	syncGuildCmd.Flags().BoolVar(&archiveReport, "archive", false, "Store the sweep report in object storage")
	syncGuildCmd.Flags().BoolVar(&yesSweep, "yes", false, "Auto-confirm (non-interactive)")

	syncCmd.AddCommand(syncUserCmd)
	syncCmd.AddCommand(syncGuildCmd)
	RootCmd.AddCommand(syncCmd)
}

// newSyncService wires the engine for one-shot CLI use. The Discord session
// is used over REST only.
func newSyncService(ctx context.Context, archive bool) (*guildsync.Service, *zap.Logger, error) {
	cfg, l, err := setup()
	if err != nil {
		return nil, nil, err
	}

	_, store, err := openPolicy(cfg, l)
	if err != nil {
		return nil, nil, err
	}

	session, err := bot.New(cfg.Bot, l)
	if err != nil {
		return nil, nil, err
	}

	var archiver *guildsync.Archiver
	if archive {
		if archiver, err = newArchiver(ctx, cfg, l); err != nil {
			return nil, nil, err
		}
	}

	return guildsync.NewService(newEngine(cfg, l, store, session), archiver, l), l, nil
}

func runSyncUser(cmd *cobra.Command, args []string) error {
	guildID, err := utils.ParseSnowflake(args[0])
	if err != nil {
		return fmt.Errorf("invalid guild: %w", err)
	}
	userID, err := utils.ParseSnowflake(args[1])
	if err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, l, err := newSyncService(ctx, false)
	if err != nil {
		return err
	}
	defer l.Sync()

	result := svc.SyncMember(ctx, guildID, userID)
	printResult(l, result)
	if !result.Success {
		return fmt.Errorf("sync finished with %d errors", len(result.Errors))
	}
	return nil
}

func runSyncGuild(cmd *cobra.Command, args []string) error {
	guildID, err := utils.ParseSnowflake(args[0])
	if err != nil {
		return fmt.Errorf("invalid guild: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, l, err := newSyncService(ctx, archiveReport)
	if err != nil {
		return err
	}
	defer l.Sync()

	fmt.Printf("This syncs every member of %s and may kick, ban or change roles.", guildID)
	if !confirmDestructiveAction(yesSweep) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	run := svc.Sweep(ctx, guildID, func(p reconcile.Progress) {
		l.Info("Member processed",
			zap.String("progress", fmt.Sprintf("%d/%d", p.Done, p.Total)),
			zap.String("user_id", p.Member.UserID),
			zap.String("status", string(p.Member.Status)),
		)
	})

	printSweepReport(l, run)
	if !run.Report.Success {
		return fmt.Errorf("sweep finished with %d errors", len(run.Report.Errors))
	}
	return nil
}

// printResult prints a member sync result using logger.
func printResult(l *zap.Logger, result *reconcile.Result) {
	l.Info("Sync result",
		zap.Bool("success", result.Success),
		zap.Int("actions", result.Mutations()),
	)
	for _, o := range result.Outcomes {
		if o.Failed {
			l.Warn("Action failed", zap.String("step", string(o.Step)), zap.String("action", string(o.Action)), zap.String("message", o.Message))
		} else if o.Action != reconcile.ActionLookup {
			l.Info("Action applied", zap.String("step", string(o.Step)), zap.String("action", string(o.Action)))
		}
	}
}

// printSweepReport prints a sweep summary using logger.
func printSweepReport(l *zap.Logger, run guildsync.SweepRun) {
	r := run.Report
	l.Info("Sweep report",
		zap.String("guild_id", r.GuildID),
		zap.Int("total", r.Total),
		zap.Int("synced", r.Synced),
		zap.Int("failed", r.Failed),
		zap.Int("skipped", r.Skipped),
		zap.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
	)

	// Show sample of errors (max 5 for logger)
	maxShow := min(len(r.Errors), 5)
	for _, msg := range r.Errors[:maxShow] {
		l.Warn("Sync error", zap.String("message", msg))
	}
	if len(r.Errors) > maxShow {
		l.Info("Additional errors not shown", zap.Int("count", len(r.Errors)-maxShow))
	}

	if run.ArchiveKey != "" {
		l.Info("Report archived", zap.String("key", run.ArchiveKey))
	}
}
