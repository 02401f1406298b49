// /internal/provision/provision.go

// Package provision creates and tears down the bot's own voice and stage
// channels. Channels are looked up by well-known name and created with an
// access policy that lets members listen but not speak.
package provision

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"loopbox/pkg/retrylimit"
)

const (
	voiceChannelName = "loopbox-voice"
	stageChannelName = "loopbox-stage"
	stageTopic       = "loopbox is on the air"

	// promoteDelay lets the voice state settle before the bot asks to be
	// moved from audience to speaker.
	promoteDelay = 2 * time.Second
)

// restClient is the slice of the discordgo session the provisioner needs.
type restClient interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelDelete(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	StageInstanceCreate(data *discordgo.StageInstanceParams, options ...discordgo.RequestOption) (*discordgo.StageInstance, error)
	StageInstanceDelete(channelID string, options ...discordgo.RequestOption) error
	RequestWithBucketID(method, urlStr string, data interface{}, bucketID string, options ...discordgo.RequestOption) ([]byte, error)
}

// Provisioner owns channel lifecycle REST calls, rate limited so repeated
// provisioning in many guilds does not hammer the API.
type Provisioner struct {
	rest   restClient
	selfID func() string
	lim    *retrylimit.AdaptiveLimiter
}

func New(dg *discordgo.Session) *Provisioner {
	return &Provisioner{
		rest:   dg,
		selfID: func() string { return dg.State.User.ID },
		lim:    retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
	}
}

// Channel is an owned, provisioned voice destination. Release is idempotent
// so a failed session start and a regular teardown can both call it safely.
type Channel struct {
	p       *Provisioner
	GuildID string
	ID      string
	Stage   bool

	stageLive   bool
	releaseOnce sync.Once
}

// Ensure finds the bot's well-known channel in the guild, creating it if
// absent. For a stage channel it also opens a stage instance and promotes
// the bot to speaker, both best-effort: on failure the channel still works
// as a plain voice channel.
func (p *Provisioner) Ensure(ctx context.Context, guildID string, stage bool) (*Channel, error) {
	name := voiceChannelName
	chType := discordgo.ChannelTypeGuildVoice
	if stage {
		name = stageChannelName
		chType = discordgo.ChannelTypeGuildStageVoice
	}

	existing, err := p.findByName(guildID, name, chType)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		data := channelCreateData(guildID, p.selfID(), stage)
		err = retrylimit.WithRetry(ctx, func() error {
			var cerr error
			existing, cerr = p.rest.GuildChannelCreateComplex(guildID, data)
			return cerr
		}, p.lim)
		if err != nil {
			return nil, fmt.Errorf("creating channel %s: %w", name, err)
		}
		log.Printf("[INFO] Guild %s: created channel %s (%s)", guildID, name, existing.ID)
	}

	ch := &Channel{p: p, GuildID: guildID, ID: existing.ID, Stage: stage}
	if stage {
		if err := p.openStage(ch); err != nil {
			log.Printf("[WARN] Guild %s: stage instance unavailable, continuing as plain voice: %v", guildID, err)
		} else {
			ch.stageLive = true
		}
	}
	return ch, nil
}

func (p *Provisioner) findByName(guildID, name string, chType discordgo.ChannelType) (*discordgo.Channel, error) {
	channels, err := p.rest.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("listing channels of guild %s: %w", guildID, err)
	}
	for _, ch := range channels {
		if ch.Name == name && ch.Type == chType {
			return ch, nil
		}
	}
	return nil, nil
}

// channelCreateData builds the create payload: @everyone may view and
// connect but not speak; the bot gets full control of its own channel.
func channelCreateData(guildID, botID string, stage bool) discordgo.GuildChannelCreateData {
	name := voiceChannelName
	chType := discordgo.ChannelTypeGuildVoice
	if stage {
		name = stageChannelName
		chType = discordgo.ChannelTypeGuildStageVoice
	}

	botPerms := int64(discordgo.PermissionViewChannel |
		discordgo.PermissionVoiceConnect |
		discordgo.PermissionVoiceSpeak |
		discordgo.PermissionVoiceMuteMembers |
		discordgo.PermissionVoiceMoveMembers |
		discordgo.PermissionManageChannels)

	return discordgo.GuildChannelCreateData{
		Name: name,
		Type: chType,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{
				// The guild ID doubles as the @everyone role ID.
				ID:    guildID,
				Type:  discordgo.PermissionOverwriteTypeRole,
				Allow: discordgo.PermissionViewChannel | discordgo.PermissionVoiceConnect,
				Deny:  discordgo.PermissionVoiceSpeak | discordgo.PermissionManageChannels,
			},
			{
				ID:    botID,
				Type:  discordgo.PermissionOverwriteTypeMember,
				Allow: botPerms,
			},
		},
	}
}

func (p *Provisioner) openStage(ch *Channel) error {
	_, err := p.rest.StageInstanceCreate(&discordgo.StageInstanceParams{
		ChannelID:             ch.ID,
		Topic:                 stageTopic,
		PrivacyLevel:          discordgo.StageInstancePrivacyLevelGuildOnly,
		SendStartNotification: false,
	})
	if err != nil {
		return fmt.Errorf("creating stage instance: %w", err)
	}

	go func() {
		time.Sleep(promoteDelay)
		if err := p.promoteSelf(ch.GuildID, ch.ID); err != nil {
			log.Printf("[WARN] Guild %s: could not promote bot to speaker: %v", ch.GuildID, err)
		}
	}()
	return nil
}

// promoteSelf clears the bot's suppressed flag so it can speak on stage.
func (p *Provisioner) promoteSelf(guildID, channelID string) error {
	body := struct {
		ChannelID string `json:"channel_id"`
		Suppress  bool   `json:"suppress"`
	}{ChannelID: channelID, Suppress: false}

	endpoint := discordgo.EndpointGuilds + guildID + "/voice-states/@me"
	_, err := p.rest.RequestWithBucketID("PATCH", endpoint, body, endpoint)
	return err
}

// Release deletes the stage instance (when one is live) before the channel
// itself. Each step is best-effort: a stage-instance failure never prevents
// the channel delete.
func (c *Channel) Release() {
	if c == nil {
		return
	}
	c.releaseOnce.Do(c.release)
}

func (c *Channel) release() {
	if c.Stage && c.stageLive {
		err := retrylimit.WithRetry(context.Background(), func() error {
			return c.p.rest.StageInstanceDelete(c.ID)
		}, c.p.lim)
		if err != nil {
			log.Printf("[WARN] Guild %s: deleting stage instance of %s: %v", c.GuildID, c.ID, err)
		}
	}

	err := retrylimit.WithRetry(context.Background(), func() error {
		_, derr := c.p.rest.ChannelDelete(c.ID)
		return derr
	}, c.p.lim)
	if err != nil {
		log.Printf("[WARN] Guild %s: deleting provisioned channel %s: %v", c.GuildID, c.ID, err)
	}
}
