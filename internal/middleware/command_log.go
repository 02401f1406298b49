package middleware

import (
	"log"
	"time"

	"loopbox/internal/command"
	"loopbox/internal/storage"
)

// WithCommandLogger records each invocation to the per-guild command
// history, resolving channel and guild names from session state.
func WithCommandLogger() Middleware {
	return func(c command.Command) command.Command {
		return &wrappedCommand{Command: c, wrap: func(ctx *command.Context) error {
			err := c.Run(ctx)

			if ctx.Deps != nil && ctx.Deps.Storage != nil {
				if logErr := logCommand(ctx, c.Name()); logErr != nil {
					log.Printf("[WARN] Failed to log command %s: %v", c.Name(), logErr)
				}
			}
			return err
		}}
	}
}

func logCommand(ctx *command.Context, name string) error {
	s := ctx.Session
	e := ctx.Event

	channelName := ""
	channel, err := s.State.Channel(e.ChannelID)
	if err != nil {
		channel, err = s.Channel(e.ChannelID)
		if err != nil {
			log.Println("[WARN] Failed to fetch channel:", err)
		}
	}
	if channel != nil {
		channelName = channel.Name
	}

	guildName := ""
	guild, err := s.State.Guild(e.GuildID)
	if err != nil {
		guild, err = s.Guild(e.GuildID)
		if err != nil {
			log.Println("[WARN] Failed to fetch guild:", err)
		}
	}
	if guild != nil {
		guildName = guild.Name
	}

	userID, username := "", ""
	if e.Author != nil {
		userID = e.Author.ID
		username = e.Author.Username
	}

	return ctx.Deps.Storage.AppendCommandToHistory(e.GuildID, storage.CommandHistoryRecord{
		ChannelID:   e.ChannelID,
		ChannelName: channelName,
		GuildName:   guildName,
		UserID:      userID,
		Username:    username,
		Command:     name,
		Datetime:    time.Now().Unix(),
	})
}
