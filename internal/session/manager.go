// /internal/session/manager.go
package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"loopbox/internal/catalog"
	"loopbox/internal/voice"
)

const eventQueueSize = 16

// Manager creates and commands playback sessions, one per guild.
type Manager struct {
	store     *Store
	transport voice.Transport
}

func NewManager(store *Store, transport voice.Transport) *Manager {
	return &Manager{store: store, transport: transport}
}

func (m *Manager) Get(guildID string) (*Session, bool) {
	return m.store.Get(guildID)
}

// Start connects to the given voice channel and begins playback of entry.
// A guild that already has a live session gets it fully torn down first.
// On any failure no session is left registered. Ownership of a provisioned
// channel passes to the session once the join succeeds; on a join failure
// the caller still owns it and must release it.
func (m *Manager) Start(ctx context.Context, guildID, channelID string, entry catalog.Entry, loop bool, channel ChannelHandle) (*Session, error) {
	if prev, ok := m.store.Get(guildID); ok {
		log.Printf("[INFO] Guild %s: replacing live session", guildID)
		if err := prev.Stop(); err != nil && !errors.Is(err, ErrNothingPlaying) {
			log.Printf("[WARN] Guild %s: stopping previous session: %v", guildID, err)
		}
	}

	s := &Session{
		guildID: guildID,
		state:   StateConnecting,
		track:   entry,
		loop:    loop,
		active:  true,
		channel: channel,
		store:   m.store,
		events:  make(chan event, eventQueueSize),
		quit:    make(chan struct{}),
	}

	conn, err := m.transport.Join(ctx, guildID, channelID, s.handleTransport)
	if err != nil {
		return nil, err
	}
	s.conn = conn

	if prev := m.store.Put(guildID, s); prev != nil {
		// A competing start slipped in between teardown and registration;
		// the displaced session still owns its resources.
		if err := prev.Stop(); err != nil && !errors.Is(err, ErrNothingPlaying) {
			log.Printf("[WARN] Guild %s: stopping displaced session: %v", guildID, err)
		}
	}
	s.mu.Lock()
	s.state = StatePlaying
	s.mu.Unlock()
	go s.run()

	if err := conn.Play(entry.Path); err != nil {
		s.teardown("initial play failed")
		return nil, fmt.Errorf("starting playback of %s: %w", entry.Name, err)
	}

	log.Printf("[INFO] Guild %s: playing %s (loop=%v)", guildID, entry.Name, loop)
	return s, nil
}

// Stop tears down the guild's session. Returns the track that was playing.
func (m *Manager) Stop(guildID string) (catalog.Entry, error) {
	s, ok := m.store.Get(guildID)
	if !ok {
		return catalog.Entry{}, ErrNothingPlaying
	}
	track := s.Track()
	if err := s.Stop(); err != nil {
		return catalog.Entry{}, err
	}
	return track, nil
}

// Skip swaps the guild's current track for next without leaving voice.
func (m *Manager) Skip(guildID string, next catalog.Entry) error {
	s, ok := m.store.Get(guildID)
	if !ok {
		return ErrNothingPlaying
	}
	return s.Skip(next)
}

// StopAll tears down every live session; used at shutdown.
func (m *Manager) StopAll() {
	for _, s := range m.store.All() {
		if err := s.Stop(); err != nil && !errors.Is(err, ErrNothingPlaying) {
			log.Printf("[WARN] Guild %s: stopping session at shutdown: %v", s.GuildID(), err)
		}
	}
}
