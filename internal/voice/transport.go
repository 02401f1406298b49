// /internal/voice/transport.go

// Package voice provides the playback transport: joining a voice channel,
// streaming a local audio file into it, and reporting idle/error events back
// to the owner of the connection.
package voice

import (
	"context"
	"errors"
	"time"
)

// readyTimeout bounds how long a join waits for the voice connection to
// become ready.
const readyTimeout = 30 * time.Second

// ErrConnectionTimeout is returned when the transport did not reach ready
// state within the bound. No connection is left behind when it fires.
var ErrConnectionTimeout = errors.New("voice connection was not ready in time")

type EventKind int

const (
	// EventIdle fires exactly once when a stream ends without a fault,
	// including when it was halted by Stop.
	EventIdle EventKind = iota
	// EventError fires exactly once when a stream ends on a fault.
	EventError
)

type Event struct {
	Kind EventKind
	Err  error // set for EventError
}

// Handler receives the events of one connection. The transport never invokes
// it concurrently with itself, and never after Destroy has completed.
type Handler func(Event)

// Connection is an exclusively owned voice connection.
type Connection interface {
	// Play starts streaming the audio file at path. Only one stream may run
	// at a time.
	Play(path string) error
	// Stop halts the current stream, if any. With force the underlying
	// decoder is killed immediately.
	Stop(force bool)
	// Destroy stops any stream and releases the connection. Idempotent.
	Destroy() error
}

type Transport interface {
	// Join connects to a voice channel and blocks until the connection is
	// ready, the 30 second bound elapses, or ctx is done.
	Join(ctx context.Context, guildID, channelID string, h Handler) (Connection, error)
}
