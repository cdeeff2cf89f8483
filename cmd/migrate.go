package cmd

import (
	"fmt"

	"guild-sync/core/database"
	"guild-sync/core/policy"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the policy store tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := policy.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate policy store: %w", err)
		}

		missing, err := policy.CheckSchema(db)
		if err != nil {
			return fmt.Errorf("failed to verify schema: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema still incomplete after migration: %v", missing)
		}

		l.Info("Policy store is up to date", zap.String("driver", db.Dialector.Name()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
