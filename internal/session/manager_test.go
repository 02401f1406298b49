package session

import (
	"context"
	"errors"
	"testing"

	"loopbox/internal/catalog"
	"loopbox/internal/voice"
)

var (
	trackA = catalog.Entry{Name: "a.mp3", Path: "media/a.mp3", DisplayName: "a"}
	trackB = catalog.Entry{Name: "b.mp3", Path: "media/b.mp3", DisplayName: "b"}
)

func newTestManager(t *testing.T) (*Manager, *Store, *fakeTransport) {
	t.Helper()
	store := NewStore()
	transport := &fakeTransport{}
	return NewManager(store, transport), store, transport
}

func TestStartRegistersSessionAndPlays(t *testing.T) {
	m, store, transport := newTestManager(t)

	s, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got, ok := store.Get("g1"); !ok || got != s {
		t.Fatal("session not registered in store")
	}
	if s.Track() != trackA {
		t.Errorf("Track = %+v, want %+v", s.Track(), trackA)
	}
	if s.State() != StatePlaying {
		t.Errorf("State = %v, want playing", s.State())
	}

	conn := transport.lastConn()
	if conn.playCount() != 1 || conn.lastPlay() != trackA.Path {
		t.Errorf("plays = %+v", conn.plays)
	}
}

func TestIdleWithLoopReplaysSameTrack(t *testing.T) {
	m, store, transport := newTestManager(t)
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	conn.emitIdle()
	waitFor(t, func() bool { return conn.playCount() == 2 }, "track was not replayed on idle")

	if conn.lastPlay() != trackA.Path {
		t.Errorf("replayed %s, want %s", conn.lastPlay(), trackA.Path)
	}
	if _, ok := store.Get("g1"); !ok {
		t.Fatal("session removed despite looping")
	}
}

func TestIdleWithoutLoopTearsDown(t *testing.T) {
	m, store, transport := newTestManager(t)
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, false, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	conn.emitIdle()
	waitFor(t, func() bool { return store.Len() == 0 }, "session not removed after idle without loop")

	if conn.destroyCount() != 1 {
		t.Errorf("destroys = %d, want 1", conn.destroyCount())
	}
	if conn.playCount() != 1 {
		t.Errorf("plays = %d, want 1", conn.playCount())
	}
}

func TestPlaybackErrorTearsDownEvenWhenLooping(t *testing.T) {
	m, store, transport := newTestManager(t)
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	conn.emitError(errors.New("decoder blew up"))
	waitFor(t, func() bool { return store.Len() == 0 }, "session not removed after playback error")

	if conn.destroyCount() != 1 {
		t.Errorf("destroys = %d, want 1", conn.destroyCount())
	}
	if conn.playCount() != 1 {
		t.Errorf("no retry expected after error, plays = %d", conn.playCount())
	}
}

func TestStopSuppressesRacingIdle(t *testing.T) {
	m, store, transport := newTestManager(t)
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	if _, err := m.Stop("g1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, ok := store.Get("g1"); ok {
		t.Fatal("session still in store after stop")
	}
	if conn.destroyCount() != 1 {
		t.Fatalf("destroys = %d, want 1", conn.destroyCount())
	}

	// An idle callback for the in-flight track arriving after the stop must
	// not start new playback.
	conn.emitIdle()
	if conn.playCount() != 1 {
		t.Errorf("idle after stop restarted playback, plays = %d", conn.playCount())
	}
	if conn.destroyCount() != 1 {
		t.Errorf("destroys = %d after late idle, want 1", conn.destroyCount())
	}
}

func TestStopWithNoSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	if _, err := m.Stop("g1"); !errors.Is(err, ErrNothingPlaying) {
		t.Fatalf("Stop = %v, want ErrNothingPlaying", err)
	}
}

func TestSkipSwapsTrackWithoutTeardown(t *testing.T) {
	m, store, transport := newTestManager(t)
	s, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	if err := m.Skip("g1", trackB); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if s.Track() != trackB {
		t.Errorf("Track = %+v, want %+v", s.Track(), trackB)
	}
	if _, ok := store.Get("g1"); !ok {
		t.Fatal("session removed by skip")
	}
	if conn.destroyCount() != 0 {
		t.Errorf("skip destroyed the connection")
	}

	// The skip's non-forced stop leads to an idle event, which replays the
	// now-updated track.
	conn.emitIdle()
	waitFor(t, func() bool { return conn.playCount() == 2 }, "skip did not replay")
	if conn.lastPlay() != trackB.Path {
		t.Errorf("replayed %s, want %s", conn.lastPlay(), trackB.Path)
	}
}

func TestSkipWithNoSession(t *testing.T) {
	m, store, _ := newTestManager(t)

	if err := m.Skip("g1", trackB); !errors.Is(err, ErrNothingPlaying) {
		t.Fatalf("Skip = %v, want ErrNothingPlaying", err)
	}
	if store.Len() != 0 {
		t.Fatal("skip created a session")
	}
}

func TestStartReplacesLiveSession(t *testing.T) {
	m, store, transport := newTestManager(t)
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	first := transport.lastConn()

	s2, err := m.Start(context.Background(), "g1", "vc-1", trackB, true, nil)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}
	second := transport.lastConn()

	if store.Len() != 1 {
		t.Fatalf("store holds %d sessions, want 1", store.Len())
	}
	if got, _ := store.Get("g1"); got != s2 {
		t.Fatal("store does not hold the replacement session")
	}
	if first.destroyCount() != 1 {
		t.Errorf("first connection destroys = %d, want 1", first.destroyCount())
	}
	if second.destroyCount() != 0 {
		t.Errorf("second connection was destroyed")
	}
}

func TestJoinFailureRegistersNothing(t *testing.T) {
	m, store, transport := newTestManager(t)
	transport.joinErr = voice.ErrConnectionTimeout

	_, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, nil)
	if !errors.Is(err, voice.ErrConnectionTimeout) {
		t.Fatalf("Start = %v, want ErrConnectionTimeout", err)
	}
	if store.Len() != 0 {
		t.Fatal("a session was registered despite the join failure")
	}
}

func TestInitialPlayFailureTearsDown(t *testing.T) {
	m, store, transport := newTestManager(t)
	transport.mu.Lock()
	transport.failNextPlay = true
	transport.mu.Unlock()

	ch := &fakeChannel{}
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, ch); err == nil {
		t.Fatal("Start succeeded despite play failure")
	}
	if store.Len() != 0 {
		t.Fatal("failed session left in store")
	}
	conn := transport.lastConn()
	if conn.destroyCount() != 1 {
		t.Errorf("destroys = %d, want 1", conn.destroyCount())
	}
	if ch.releaseCount() != 1 {
		t.Errorf("provisioned channel releases = %d, want 1", ch.releaseCount())
	}
}

func TestTeardownReleasesProvisionedChannelOnce(t *testing.T) {
	m, _, transport := newTestManager(t)
	ch := &fakeChannel{}
	if _, err := m.Start(context.Background(), "g1", "vc-1", trackA, true, ch); err != nil {
		t.Fatalf("Start: %v", err)
	}
	conn := transport.lastConn()

	if _, err := m.Stop("g1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if ch.releaseCount() != 1 {
		t.Fatalf("releases = %d, want 1", ch.releaseCount())
	}

	// A second stop finds no session; nothing is released twice.
	if _, err := m.Stop("g1"); !errors.Is(err, ErrNothingPlaying) {
		t.Fatalf("second Stop = %v, want ErrNothingPlaying", err)
	}
	if ch.releaseCount() != 1 {
		t.Errorf("releases = %d after second stop, want 1", ch.releaseCount())
	}
	if conn.destroyCount() != 1 {
		t.Errorf("destroys = %d, want 1", conn.destroyCount())
	}
}

func TestStopAll(t *testing.T) {
	m, store, _ := newTestManager(t)
	for _, g := range []string{"g1", "g2", "g3"} {
		if _, err := m.Start(context.Background(), g, "vc-1", trackA, true, nil); err != nil {
			t.Fatalf("Start %s: %v", g, err)
		}
	}

	m.StopAll()

	if store.Len() != 0 {
		t.Fatalf("store holds %d sessions after StopAll", store.Len())
	}
}
