package commands

import (
	"fmt"

	"loopbox/internal/command"
)

type reloadCommand struct{}

func (c *reloadCommand) Name() string        { return "reload" }
func (c *reloadCommand) Description() string { return "Rescans the media directory." }
func (c *reloadCommand) Aliases() []string   { return nil }

func (c *reloadCommand) Run(ctx *command.Context) error {
	count := ctx.Deps.Catalog.Reload()
	return ctx.Reply(fmt.Sprintf("🔄 Catalog reloaded, %d tracks found.", count))
}
