// /internal/session/session.go

// Package session owns the per-guild playback session: its store, its state
// machine, and the guarantee that voice connections and provisioned channels
// are released exactly once on every exit path.
package session

import (
	"errors"
	"log"
	"sync"

	"loopbox/internal/catalog"
	"loopbox/internal/voice"
)

var ErrNothingPlaying = errors.New("nothing is playing in this guild")

// ChannelHandle is an owned, dynamically provisioned voice destination.
// Release is invoked at most once per session and must tolerate partial
// failure internally.
type ChannelHandle interface {
	Release()
}

type State int

const (
	StateConnecting State = iota
	StatePlaying
	StateTearingDown
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StateTearingDown:
		return "tearing down"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

type eventKind int

const (
	eventIdle eventKind = iota
	eventError
	eventStop
	eventSkip
)

type event struct {
	kind  eventKind
	err   error         // eventError
	track catalog.Entry // eventSkip
	done  chan struct{} // closed once the event has been handled
}

// Session is one guild's live playback. All transitions run on a single
// goroutine fed by a sequential event queue, so a stop is always observed
// before any idle callback that raced it.
type Session struct {
	guildID string

	mu     sync.Mutex
	state  State
	track  catalog.Entry
	loop   bool
	active bool

	conn    voice.Connection
	channel ChannelHandle
	store   *Store

	events       chan event
	quit         chan struct{}
	teardownOnce sync.Once
}

func (s *Session) GuildID() string {
	return s.guildID
}

func (s *Session) Track() catalog.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop marks the session inactive, releases its resources, and removes it
// from the store. It blocks until the teardown has been handled.
func (s *Session) Stop() error {
	done := make(chan struct{})
	if !s.post(event{kind: eventStop, done: done}) {
		return ErrNothingPlaying
	}
	<-done
	return nil
}

// Skip swaps the current track and halts the running stream without the
// intentional-stop flag; the ensuing idle event replays the new track.
func (s *Session) Skip(next catalog.Entry) error {
	done := make(chan struct{})
	if !s.post(event{kind: eventSkip, track: next, done: done}) {
		return ErrNothingPlaying
	}
	<-done
	return nil
}

// handleTransport is the voice.Handler for this session's connection.
func (s *Session) handleTransport(ev voice.Event) {
	switch ev.Kind {
	case voice.EventError:
		s.post(event{kind: eventError, err: ev.Err})
	default:
		s.post(event{kind: eventIdle})
	}
}

// post enqueues an event unless the session has already begun tearing down.
// The queue is buffered and the send happens under the state lock, so an
// accepted event is either handled by run or resolved by drain.
func (s *Session) post(ev event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateTearingDown || s.state == StateRemoved {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		log.Printf("[WARN] Guild %s: session event queue full, event dropped", s.guildID)
		return false
	}
}

// run consumes the event queue until the session tears down.
func (s *Session) run() {
	defer s.drain()

	for {
		var ev event
		select {
		case ev = <-s.events:
		case <-s.quit:
			return
		}

		switch ev.kind {
		case eventIdle:
			if !s.shouldRestart() {
				s.teardown("track finished")
				return
			}
			track := s.Track()
			log.Printf("[INFO] Guild %s: looping %s", s.guildID, track.DisplayName)
			if err := s.conn.Play(track.Path); err != nil {
				log.Printf("[ERR] Guild %s: restarting %s: %v", s.guildID, track.Name, err)
				s.teardown("restart failed")
				return
			}

		case eventError:
			log.Printf("[ERR] Guild %s: playback error: %v", s.guildID, ev.err)
			s.teardown("playback error")
			return

		case eventStop:
			// Inactive before any release, so an idle event racing this
			// stop can never trigger a loop restart.
			s.mu.Lock()
			s.active = false
			s.mu.Unlock()

			s.conn.Stop(true)
			s.teardown("stop requested")
			close(ev.done)
			return

		case eventSkip:
			s.mu.Lock()
			s.track = ev.track
			s.mu.Unlock()

			s.conn.Stop(false)
			close(ev.done)
		}
	}
}

// drain resolves events that were accepted after the final one run handled.
func (s *Session) drain() {
	for {
		select {
		case ev := <-s.events:
			if ev.done != nil {
				close(ev.done)
			}
		default:
			return
		}
	}
}

func (s *Session) shouldRestart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.loop && s.state == StatePlaying
}

// teardown releases the connection and any provisioned channel, then removes
// the session from the store. Idempotent; each step is isolated so one
// failure never skips the rest.
func (s *Session) teardown(reason string) {
	s.teardownOnce.Do(func() {
		s.mu.Lock()
		s.active = false
		s.state = StateTearingDown
		conn := s.conn
		channel := s.channel
		s.mu.Unlock()

		log.Printf("[INFO] Guild %s: tearing down session (%s)", s.guildID, reason)

		if conn != nil {
			if err := conn.Destroy(); err != nil {
				log.Printf("[ERR] Guild %s: destroying voice connection: %v", s.guildID, err)
			}
		}
		if channel != nil {
			channel.Release()
		}
		s.store.Remove(s.guildID, s)

		s.mu.Lock()
		s.state = StateRemoved
		s.mu.Unlock()

		close(s.quit)
	})
}
