package bot

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("bot token is not configured")

// Intents are the gateway intents the bot needs: guild events for the
// command layer and the privileged member intent for member listing.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

// Session wraps a discordgo session. REST calls work without Open; the
// gateway is only needed for interactions.
type Session struct {
	discord *discordgo.Session
	cfg     Config
	logger  *zap.Logger
}

// New creates a session. It does not connect.
func New(cfg Config, logger *zap.Logger) (*Session, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	dg.Identify.Intents = Intents

	return &Session{discord: dg, cfg: cfg, logger: logger}, nil
}

// Discord returns the underlying discordgo session.
func (s *Session) Discord() *discordgo.Session {
	return s.discord
}

// Open connects to the gateway.
func (s *Session) Open() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	if s.discord.State.User != nil {
		s.logger.Info("Discord bot connected", zap.String("bot_id", s.discord.State.User.ID))
	}
	return nil
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// AddHandler adds an event handler to the session.
func (s *Session) AddHandler(handler any) func() {
	return s.discord.AddHandler(handler)
}

// RegisterCommands overwrites the application commands, globally or in the
// configured guild. It is a no-op when registration is disabled.
func (s *Session) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	if !s.cfg.RegisterCommands {
		return nil
	}
	if s.discord.State.User == nil {
		return errors.New("session is not open")
	}

	created, err := s.discord.ApplicationCommandBulkOverwrite(s.discord.State.User.ID, s.cfg.CommandGuildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range created {
		s.logger.Info("Registered command", zap.String("command", cmd.Name))
	}
	return nil
}
