package cmd

import (
	"context"
	"fmt"

	"guild-sync/core/utils"
	"guild-sync/feature/settings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// settingsCmd is the parent command for the administrator write path.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the sync settings of a subscriber server",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show <guild>",
	Short: "Show verification, switches and role bindings",
	Args:  cobra.ExactArgs(1),
	RunE: withSettings(func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error) {
		return svc.Show(ctx, guildID)
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <guild> <switch> <on|off>",
	Short: "Turn a switch on or off",
	Args:  cobra.ExactArgs(3),
	RunE: withSettings(func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error) {
		value, err := utils.ParseBool(args[2])
		if err != nil {
			return nil, err
		}
		return svc.SetSwitch(ctx, guildID, args[1], value)
	}),
}

var settingsVerifyCmd = &cobra.Command{
	Use:   "verify <guild> <on|off>",
	Short: "Mark or unmark a server as verified",
	Args:  cobra.ExactArgs(2),
	RunE: withSettings(func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error) {
		value, err := utils.ParseBool(args[1])
		if err != nil {
			return nil, err
		}
		return svc.SetVerified(ctx, guildID, value)
	}),
}

var settingsBindCmd = &cobra.Command{
	Use:   "bind <guild> <alias> <role>",
	Short: "Bind a local role to a donor role alias",
	Args:  cobra.ExactArgs(3),
	RunE: withSettings(func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error) {
		return svc.BindRole(ctx, guildID, args[1], args[2])
	}),
}

var settingsUnbindCmd = &cobra.Command{
	Use:   "unbind <guild> <alias>",
	Short: "Remove a role binding",
	Args:  cobra.ExactArgs(2),
	RunE: withSettings(func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error) {
		return svc.UnbindRole(ctx, guildID, args[1])
	}),
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsVerifyCmd, settingsBindCmd, settingsUnbindCmd)
	RootCmd.AddCommand(settingsCmd)
}

type settingsAction func(ctx context.Context, svc *settings.Service, guildID string, args []string) (*settings.View, error)

// withSettings wires the settings service and prints the resulting view.
func withSettings(action settingsAction) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		guildID, err := utils.ParseSnowflake(args[0])
		if err != nil {
			return fmt.Errorf("invalid guild: %w", err)
		}

		cfg, l, err := setup()
		if err != nil {
			return err
		}
		defer l.Sync()

		_, store, err := openPolicy(cfg, l)
		if err != nil {
			return err
		}

		view, err := action(cmd.Context(), settings.NewService(store, cfg.Donor, l), guildID, args)
		if err != nil {
			return err
		}
		printView(l, view)
		return nil
	}
}

// printView prints a settings view using logger.
func printView(l *zap.Logger, view *settings.View) {
	l.Info("Server settings", zap.String("guild_id", view.GuildID), zap.Bool("verified", view.Verified))
	for _, s := range view.Switches {
		l.Info("Switch",
			zap.String("switch", string(s.Switch)),
			zap.Bool("enabled", s.Enabled),
			zap.Bool("accessible", s.Accessible),
		)
	}
	for _, r := range view.Roles {
		l.Info("Role binding",
			zap.String("alias", string(r.Alias)),
			zap.String("role_id", r.RoleID),
			zap.Bool("accessible", r.Accessible),
		)
	}
}
