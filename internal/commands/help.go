package commands

import (
	"fmt"
	"strings"

	"loopbox/internal/command"
)

type helpCommand struct{}

func (c *helpCommand) Name() string        { return "help" }
func (c *helpCommand) Description() string { return "Shows a list of available commands." }
func (c *helpCommand) Aliases() []string   { return nil }

func (c *helpCommand) Run(ctx *command.Context) error {
	return ctx.Reply(buildHelpMessage(ctx.Deps.Config.CommandPrefix, command.All()))
}

func buildHelpMessage(prefix string, cmds []command.Command) string {
	var sb strings.Builder
	sb.WriteString("📖 Available commands\n\n")
	for _, cmd := range cmds {
		name := prefix + cmd.Name()
		for _, a := range cmd.Aliases() {
			name += ", " + prefix + a
		}
		fmt.Fprintf(&sb, "`%s` — %s\n", name, cmd.Description())
	}
	return sb.String()
}
