// Package discord is the chat driving adapter: it registers the bot's slash
// commands and serves their interactions over a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// ErrGatewayNotReady is reported by Check while the gateway is disconnected.
var ErrGatewayNotReady = errors.New("discord gateway not ready")

// Bot owns the discordgo session and its lifecycle.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	guildID string
	logger  *slog.Logger

	ctx   context.Context
	ready atomic.Bool
}

// NewBot creates a Bot authenticated with the given bot token. When guildID
// is set, commands are registered to that guild only, which takes effect
// immediately; otherwise they are registered globally.
func NewBot(token, guildID string, handler *Handler, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session: session,
		handler: handler,
		guildID: guildID,
		logger:  logger,
		ctx:     context.Background(),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onResumed)
	session.AddHandler(b.onDisconnect)
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Run opens the gateway connection, registers the slash commands and blocks
// until ctx is cancelled. Interactions are handled under ctx, so cancelling
// it also aborts in-flight commands.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer func() {
		b.ready.Store(false)
		if err := b.session.Close(); err != nil {
			b.logger.Warn("closing discord session", "error", err)
		}
	}()

	if err := b.registerCommands(); err != nil {
		return err
	}

	<-ctx.Done()
	b.logger.Info("discord bot stopping")
	return nil
}

// Check reports whether the gateway connection is established.
func (b *Bot) Check(_ context.Context) error {
	if !b.ready.Load() {
		return ErrGatewayNotReady
	}
	return nil
}

func (b *Bot) registerCommands() error {
	if b.session.State == nil || b.session.State.User == nil {
		return errors.New("register commands: session has no application user")
	}
	appID := b.session.State.User.ID

	cmds, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	b.logger.Info("slash commands registered", "count", len(cmds), "guild_id", b.guildID)
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.ready.Store(true)

	name := ""
	if r.User != nil {
		name = r.User.String()
	}
	b.logger.Info("discord gateway ready", "user", name, "guilds", len(r.Guilds))
}

func (b *Bot) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	b.ready.Store(true)
	b.logger.Info("discord gateway resumed")
}

func (b *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	b.ready.Store(false)
	b.logger.Warn("discord gateway disconnected")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.handler.HandleInteraction(b.ctx, s, i)
}
