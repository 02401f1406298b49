package middleware

import "loopbox/internal/command"

// WithGuildOnly drops invocations that arrive outside a guild, such as
// direct messages.
func WithGuildOnly() Middleware {
	return func(c command.Command) command.Command {
		return &wrappedCommand{Command: c, wrap: func(ctx *command.Context) error {
			if ctx.Event.GuildID == "" {
				return nil
			}
			return c.Run(ctx)
		}}
	}
}
