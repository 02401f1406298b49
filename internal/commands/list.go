package commands

import (
	"fmt"
	"strings"

	"loopbox/internal/command"
)

const listLimit = 20

type listCommand struct{}

func (c *listCommand) Name() string        { return "list" }
func (c *listCommand) Description() string { return "Lists the available tracks." }
func (c *listCommand) Aliases() []string   { return nil }

func (c *listCommand) Run(ctx *command.Context) error {
	entries := ctx.Deps.Catalog.Entries()
	if len(entries) == 0 {
		return ctx.ReplyError("No audio files available.")
	}

	var b strings.Builder
	b.WriteString("🎵 Available tracks\n\n")
	for i, entry := range entries {
		if i == listLimit {
			fmt.Fprintf(&b, "… and %d more", len(entries)-listLimit)
			break
		}
		fmt.Fprintf(&b, "%d. `%s`\n", i+1, entry.DisplayName)
	}
	return ctx.Reply(b.String())
}
