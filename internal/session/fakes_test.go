package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loopbox/internal/voice"
)

// fakeConn records transport calls and lets tests fire idle/error events.
type fakeConn struct {
	mu       sync.Mutex
	handler  voice.Handler
	plays    []string
	stops    []bool
	destroys int
	failPlay bool
}

func (f *fakeConn) Play(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPlay {
		return errors.New("resource unavailable")
	}
	f.plays = append(f.plays, path)
	return nil
}

func (f *fakeConn) Stop(force bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, force)
}

func (f *fakeConn) Destroy() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroys++
	return nil
}

func (f *fakeConn) emitIdle() {
	f.handler(voice.Event{Kind: voice.EventIdle})
}

func (f *fakeConn) emitError(err error) {
	f.handler(voice.Event{Kind: voice.EventError, Err: err})
}

func (f *fakeConn) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.plays)
}

func (f *fakeConn) lastPlay() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.plays) == 0 {
		return ""
	}
	return f.plays[len(f.plays)-1]
}

func (f *fakeConn) destroyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroys
}

type fakeTransport struct {
	mu           sync.Mutex
	conns        []*fakeConn
	joinErr      error
	failNextPlay bool
}

func (t *fakeTransport) Join(ctx context.Context, guildID, channelID string, h voice.Handler) (voice.Connection, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.joinErr != nil {
		return nil, t.joinErr
	}
	c := &fakeConn{handler: h, failPlay: t.failNextPlay}
	t.failNextPlay = false
	t.conns = append(t.conns, c)
	return c, nil
}

func (t *fakeTransport) lastConn() *fakeConn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// fakeChannel counts releases of a provisioned channel.
type fakeChannel struct {
	mu       sync.Mutex
	releases int
}

func (f *fakeChannel) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases++
}

func (f *fakeChannel) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releases
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
