// Package discord wires the gateway session, the command registry, and the
// playback stack together into a running bot.
package discord

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"loopbox/internal/catalog"
	"loopbox/internal/command"
	"loopbox/internal/commands"
	"loopbox/internal/config"
	"loopbox/internal/middleware"
	"loopbox/internal/provision"
	"loopbox/internal/session"
	"loopbox/internal/storage"
	"loopbox/internal/voice"
)

type Bot struct {
	dg   *discordgo.Session
	cfg  *config.Config
	deps *command.Deps
}

// StartBot runs the bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{cfg: cfg}
	if err := b.run(ctx, store); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, store *storage.Storage) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	cat := catalog.New(b.cfg.MediaDir)
	count := cat.Reload()
	log.Printf("[INFO] Catalog loaded from %s, %d tracks", b.cfg.MediaDir, count)

	b.deps = &command.Deps{
		Config:      b.cfg,
		Catalog:     cat,
		Sessions:    session.NewManager(session.NewStore(), voice.NewTransport(dg)),
		Provisioner: provision.New(dg),
		Storage:     store,
	}

	for _, cmd := range commands.All() {
		command.Register(middleware.Apply(cmd,
			middleware.WithGuildOnly(),
			middleware.WithCommandLogger(),
		))
	}

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.deps.Sessions.StopAll()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}
	log.Printf("[INFO] ✅ Discord bot %v is running in %d guilds.", botInfo.Username, len(r.Guilds))
}

// onMessageCreate dispatches prefix commands. Unknown commands are ignored
// so the bot can share a prefix with other bots.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.cfg.CommandPrefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.cfg.CommandPrefix))
	if len(fields) == 0 {
		return
	}

	cmd, ok := command.Get(strings.ToLower(fields[0]))
	if !ok {
		return
	}

	ctx := &command.Context{
		Session: s,
		Event:   m,
		Args:    fields[1:],
		Deps:    b.deps,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Printf("[ERR] Error running command %s: %v", cmd.Name(), err)
		if replyErr := ctx.ReplyError("Something went wrong running that command."); replyErr != nil {
			log.Printf("[WARN] Failed to report command error: %v", replyErr)
		}
	}
}
