// Package middleware provides cross-cutting wrappers for chat commands.
package middleware

import "loopbox/internal/command"

type Middleware func(command.Command) command.Command

type wrappedCommand struct {
	command.Command
	wrap func(ctx *command.Context) error
}

func (w *wrappedCommand) Run(ctx *command.Context) error {
	if w.wrap != nil {
		return w.wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func Apply(cmd command.Command, mws ...Middleware) command.Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
