package cmd

import (
	"fmt"
	"os"

	"guild-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "guild-sync",
	Short: "Guild Sync Service",
	Long: `Guild Sync keeps members of subscriber Discord servers in line with a donor server.
It mirrors roles, nicknames and bans, and can restrict a server to donor players.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps for terminal users
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
