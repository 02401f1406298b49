package commands

import (
	"fmt"
	"strings"
	"time"

	"loopbox/internal/command"
	"loopbox/internal/version"
)

type aboutCommand struct{}

func (c *aboutCommand) Name() string        { return "about" }
func (c *aboutCommand) Description() string { return "Shows info about the bot." }
func (c *aboutCommand) Aliases() []string   { return nil }

func (c *aboutCommand) Run(ctx *command.Context) error {
	buildDate := "unknown"
	if version.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, version.BuildDate); err == nil {
			buildDate = t.Format("2006-01-02")
		} else {
			buildDate = "invalid date"
		}
	}
	goVer := strings.TrimPrefix(version.GoVersion, "go")

	return ctx.Reply(fmt.Sprintf(
		"ℹ️ About\n\n**%s** — %s\n\nVersion: %s\nBuilt: %s (Go %s)",
		version.AppName, version.AppDescription, version.Version, buildDate, goVer,
	))
}
