package commands

import (
	"fmt"
	"time"

	"loopbox/internal/command"
)

type pingCommand struct{}

func (c *pingCommand) Name() string        { return "test" }
func (c *pingCommand) Description() string { return "Checks that the bot is responsive." }
func (c *pingCommand) Aliases() []string   { return []string{"ping"} }

// Run measures the full message round trip: send a placeholder, then edit
// it with the delta between the two message timestamps.
func (c *pingCommand) Run(ctx *command.Context) error {
	sent, err := ctx.Session.ChannelMessageSend(ctx.Event.ChannelID, "Working on it…")
	if err != nil {
		return err
	}
	_, err = ctx.Session.ChannelMessageEdit(ctx.Event.ChannelID, sent.ID,
		buildPongMessage(ctx.Event.Timestamp, sent.Timestamp))
	return err
}

func buildPongMessage(received, sent time.Time) string {
	return fmt.Sprintf("✅ Test successful! 🏓 Latency: %d ms", sent.Sub(received).Milliseconds())
}
