// Package command defines the chat command contract and the shared
// dependencies commands run against.
package command

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"loopbox/internal/catalog"
	"loopbox/internal/config"
	"loopbox/internal/provision"
	"loopbox/internal/session"
	"loopbox/internal/storage"
)

const embedColor = 0x9b59b6

type Command interface {
	Name() string
	Description() string
	Aliases() []string
	Run(ctx *Context) error
}

// Deps bundles everything a command may need. The bot wires one Deps
// value at startup and shares it across all commands.
type Deps struct {
	Config      *config.Config
	Catalog     *catalog.Catalog
	Sessions    *session.Manager
	Provisioner *provision.Provisioner
	Storage     *storage.Storage
}

type Context struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Args    []string
	Deps    *Deps
}

// Reply sends a plain embed to the invoking channel.
func (c *Context) Reply(message string) error {
	_, err := c.Session.ChannelMessageSendEmbed(c.Event.ChannelID, embed.NewEmbed().
		SetColor(embedColor).
		SetDescription(message).
		MessageEmbed)
	return err
}

// ReplyError sends an error-styled embed to the invoking channel.
func (c *Context) ReplyError(message string) error {
	_, err := c.Session.ChannelMessageSendEmbed(c.Event.ChannelID, embed.NewErrorEmbed("Error", message))
	return err
}
