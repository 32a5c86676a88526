// Package config holds session-scoped configuration for this module. It
// carries only values relevant to the client core itself (timeouts,
// buffering); transport addressing and process lifecycle are the
// embedding application's concern.
package config

import (
	"time"

	"github.com/scottdunlop/godwp/wire"
)

// Config holds the tunables a jdwp.Session reads at construction time.
type Config struct {
	// RequestTimeout bounds how long Session.request waits for a reply
	// before giving up and returning a TransportError.
	RequestTimeout time.Duration

	// EventQueueDepth is the buffered channel size given to every Hook;
	// once a Hook's consumer falls behind by this many events, further
	// events for it are dropped rather than blocking the event-dispatch
	// goroutine.
	EventQueueDepth int

	// DefaultIDSizes seeds Session's id-width table before the
	// VirtualMachine.IDSizes handshake reply negotiates the real ones.
	DefaultIDSizes wire.IDSizes
}

// DefaultConfig returns the configuration this module ships with out of
// the box: a five second request timeout, a modestly buffered hook queue,
// and Dalvik's common 8-byte-everything id layout.
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout:  5 * time.Second,
		EventQueueDepth: 64,
		DefaultIDSizes:  wire.DefaultIDSizes(),
	}
}
