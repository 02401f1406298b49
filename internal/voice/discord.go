// /internal/voice/discord.go
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DiscordTransport joins voice channels through a discordgo session.
type DiscordTransport struct {
	dg *discordgo.Session
}

func NewTransport(dg *discordgo.Session) *DiscordTransport {
	return &DiscordTransport{dg: dg}
}

func (t *DiscordTransport) Join(ctx context.Context, guildID, channelID string, h Handler) (Connection, error) {
	type joinResult struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	res := make(chan joinResult, 1)

	go func() {
		vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		res <- joinResult{vc: vc, err: err}
	}()

	// A late-arriving connection after timeout or cancellation is
	// disconnected so a failed join never leaks voice state.
	discardLate := func() {
		go func() {
			if r := <-res; r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
	}

	select {
	case r := <-res:
		if r.err != nil {
			return nil, fmt.Errorf("joining voice channel %s: %w", channelID, r.err)
		}
		return &discordConn{vc: r.vc, handler: h}, nil
	case <-time.After(readyTimeout):
		discardLate()
		return nil, ErrConnectionTimeout
	case <-ctx.Done():
		discardLate()
		return nil, ctx.Err()
	}
}

// discordConn streams ffmpeg-decoded PCM as Opus frames into a discordgo
// voice connection.
type discordConn struct {
	vc      *discordgo.VoiceConnection
	handler Handler

	mu        sync.Mutex
	stop      chan struct{}
	cmd       *exec.Cmd
	streaming bool
	destroyed bool

	destroyOnce sync.Once
}

func (c *discordConn) Play(path string) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return errors.New("connection is destroyed")
	}
	if c.streaming {
		c.mu.Unlock()
		return errors.New("a stream is already running")
	}
	stop := make(chan struct{})
	c.stop = stop
	c.streaming = true
	c.mu.Unlock()

	go c.stream(path, stop)
	return nil
}

func (c *discordConn) Stop(force bool) {
	c.mu.Lock()
	if c.stop != nil {
		select {
		case <-c.stop:
		default:
			close(c.stop)
		}
	}
	cmd := c.cmd
	c.mu.Unlock()

	if force && cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func (c *discordConn) Destroy() error {
	var err error
	c.destroyOnce.Do(func() {
		c.mu.Lock()
		c.destroyed = true
		c.mu.Unlock()

		c.Stop(true)
		err = c.vc.Disconnect()
	})
	return err
}

// stream runs one playback to completion and emits exactly one event, unless
// the connection was destroyed underneath it.
func (c *discordConn) stream(path string, stop chan struct{}) {
	err := c.runStream(path, stop)

	c.mu.Lock()
	c.streaming = false
	c.cmd = nil
	destroyed := c.destroyed
	c.mu.Unlock()

	if destroyed {
		return
	}
	if err != nil {
		c.handler(Event{Kind: EventError, Err: err})
		return
	}
	c.handler(Event{Kind: EventIdle})
}

func (c *discordConn) runStream(path string, stop chan struct{}) error {
	cmd := exec.Command("ffmpeg",
		"-i", path,
		"-ac", fmt.Sprint(channels),
		"-f", "s16le",
		"-ar", fmt.Sprint(sampleRate),
		"pipe:1",
	)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	c.mu.Lock()
	c.cmd = cmd
	c.mu.Unlock()

	enc, err := newOpusEncoder()
	if err != nil {
		return fmt.Errorf("creating opus encoder: %w", err)
	}

	if err := c.vc.Speaking(true); err != nil {
		log.Printf("[WARN] Failed to set speaking state: %v", err)
	}
	defer func() { _ = c.vc.Speaking(false) }()

	buf := make([]byte, frameSize*channels*2)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if _, err := io.ReadFull(out, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			select {
			case <-stop:
				// A force-stop kills ffmpeg mid-read; that is a halt,
				// not a fault.
				return nil
			default:
			}
			return fmt.Errorf("reading ffmpeg output: %w", err)
		}

		frame, err := enc.Encode(buf)
		if err != nil {
			return fmt.Errorf("encoding opus frame: %w", err)
		}

		select {
		case c.vc.OpusSend <- frame:
		case <-stop:
			return nil
		case <-time.After(time.Second):
			return errors.New("voice send timed out")
		}
	}
}
