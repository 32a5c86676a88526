// Package transport declares the collaborator contract a jdwp.Session
// depends on to move bytes. Framing the wire stream into length-prefixed
// packets, performing the JDWP handshake, correlating replies to their
// requests by packet id, and doing the underlying socket I/O are all the
// implementation's responsibility; this package defines only the
// boundary the core dispatches through.
package transport

import "context"

// EventHandlerFunc receives the request id and raw reply-codec payload of
// an asynchronous event packet, as delivered by the VM on the transport's
// own delivery goroutine. It must never block on or call Request: the
// transport's reader goroutine is typically single-threaded, so issuing a
// request from inside a hook would deadlock waiting for a reply that the
// same goroutine would have to read to deliver.
type EventHandlerFunc func(id uint32, payload []byte)

// Transport is the sole interface this module requires from its caller.
// A Transport owns exactly one JDWP connection.
type Transport interface {
	// Request sends a command packet built from commandSet, command, and
	// payload, and blocks until the matching reply arrives, correlating
	// it to this call by packet id even when other goroutines issue
	// concurrent requests on the same Transport. It returns the reply's
	// error code (0 means success) and the reply's payload bytes. ctx
	// bounds how long Request may block; an implementation must give up
	// and return ctx.Err() once ctx is done.
	Request(ctx context.Context, commandSet, command byte, payload []byte) (code uint16, reply []byte, err error)

	// Hook registers fn to be invoked whenever the transport delivers an
	// asynchronous composite event packet (JDWP command 0x4064). Only one
	// hook may be registered at a time; a second call replaces the first.
	Hook(fn EventHandlerFunc)

	// Close releases the underlying connection, unblocking any call
	// currently parked in Request with a transport-closed error. Close
	// must be safe to call more than once.
	Close() error
}
