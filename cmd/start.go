package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guild-sync/core/bot"
	"guild-sync/core/loader"
	"guild-sync/core/logger"
	"guild-sync/core/middleware/auth"
	"guild-sync/core/middleware/rayid"

	"guild-sync/feature/commands"
	"guild-sync/feature/settings"
	guildsync "guild-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "guild-sync/docs/swagger"
)

// @title Guild Sync API
// @version 1.0
// @description API for syncing subscriber Discord servers with the donor server.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP API and the Discord bot",
	Long:  `Starts the HTTP server, connects the Discord bot and serves its commands until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, logg, err := setup()
		if err != nil {
			log.Fatal(err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 2. Policy store
		_, store, err := openPolicy(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to open policy store", zap.Error(err))
		}

		// 3. Discord session and engine
		session, err := bot.New(cfg.Bot, logg)
		if err != nil {
			logg.Fatal("Failed to create Discord session", zap.Error(err))
		}
		engine := newEngine(cfg, logg, store, session)

		// 4. Report archive (Optional)
		var archiver *guildsync.Archiver
		if cfg.Storage.Enabled {
			if archiver, err = newArchiver(ctx, cfg, logg); err != nil {
				logg.Warn("Report archive disabled", zap.Error(err))
				archiver = nil
			}
		}

		// 5. Features
		syncFeature := guildsync.NewFeature(engine, archiver, logg)
		settingsFeature := settings.NewFeature(store, cfg.Donor, logg)

		mgr := loader.NewManager(logg)
		mgr.Register(syncFeature)
		mgr.Register(settingsFeature)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		if !cfg.Server.Protected() {
			logg.Warn("No API key configured, the admin API is unprotected")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Discord commands
		handler := commands.NewHandler(ctx, session.Discord(), syncFeature.Service(), settingsFeature.Service(), cfg.Sync.SettingsCommand, logg)
		session.AddHandler(handler.HandleInteraction)
		if err := session.Open(); err != nil {
			logg.Fatal("Failed to connect Discord bot", zap.Error(err))
		}
		if err := session.RegisterCommands(handler.Commands()); err != nil {
			logg.Error("Failed to register commands", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")

		cancel()
		timeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		if err := app.ShutdownWithTimeout(timeout); err != nil {
			logg.Warn("HTTP shutdown incomplete", zap.Error(err))
		}
		if err := session.Close(); err != nil {
			logg.Warn("Discord session close failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
