package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"guild-sync/core/bot"
	"guild-sync/core/config"
	"guild-sync/core/database"
	"guild-sync/core/directory"
	"guild-sync/core/identity"
	"guild-sync/core/logger"
	"guild-sync/core/policy"
	"guild-sync/core/reconcile"
	"guild-sync/core/storage"
	guildsync "guild-sync/feature/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openPolicy connects to the policy database and warns about pending
// migrations.
func openPolicy(cfg *config.Config, l *zap.Logger) (*gorm.DB, *policy.Store, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if missing, err := policy.CheckSchema(db); err != nil {
		l.Warn("Could not inspect policy schema", zap.Error(err))
	} else if len(missing) > 0 {
		l.Warn("Policy schema is incomplete, run the migrate command", zap.Strings("missing", missing))
	}

	return db, policy.NewStore(db, cfg.Donor), nil
}

// newEngine builds the reconcile engine over a Discord session.
func newEngine(cfg *config.Config, l *zap.Logger, store *policy.Store, session *bot.Session) *reconcile.Engine {
	provider := directory.NewDiscord(session.Discord())
	profiles := identity.NewClient(cfg.Identity)
	return reconcile.NewEngine(cfg.Sync, cfg.Donor, store, provider, profiles, l)
}

// newArchiver connects to object storage and makes sure the report bucket
// exists.
func newArchiver(ctx context.Context, cfg *config.Config, l *zap.Logger) (*guildsync.Archiver, error) {
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	if err := storage.EnsureBucket(ctx, client, cfg.Storage); err != nil {
		return nil, err
	}
	return guildsync.NewArchiver(client, cfg.Storage.Bucket, cfg.Storage.Retention, l), nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(yes bool) bool {
	if yes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
