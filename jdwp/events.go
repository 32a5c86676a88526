package jdwp

import (
	"context"
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/wire"
)

// eventDecoderFunc decodes one event body (everything after the event-kind
// byte already consumed by handleComposite) into the event's request id and
// a kind-specific payload value.
type eventDecoderFunc func(sess *Session, dec *wire.Decoder) (requestID uint32, payload any, err error)

var eventDecoders [256]eventDecoderFunc

func registerEventDecoder(kind byte, fn eventDecoderFunc) {
	eventDecoders[kind] = fn
}

func init() {
	registerEventDecoder(eventKindMethodEntry, decodeMethodEntryEvent)
}

// MethodEntryEvent is the payload delivered for event-kind 40.
type MethodEntryEvent struct {
	Thread   *Thread
	Location *Location
}

func decodeMethodEntryEvent(sess *Session, dec *wire.Decoder) (uint32, any, error) {
	reqID, err := dec.UnpackU32()
	if err != nil {
		return 0, nil, &CodecError{Op: "Event.MethodEntry.requestID", Err: err}
	}
	tid, err := dec.UnpackObjectID()
	if err != nil {
		return 0, nil, &CodecError{Op: "Event.MethodEntry.thread", Err: err}
	}
	loc, err := dec.UnpackLocation()
	if err != nil {
		return 0, nil, &CodecError{Op: "Event.MethodEntry.location", Err: err}
	}
	evt := MethodEntryEvent{
		Thread:   sess.threadByID(wire.ThreadID(tid)),
		Location: sess.locationByTriple(loc.Type, loc.Method, loc.Index),
	}
	return reqID, evt, nil
}

// Hook is the delivery queue for one event registration. It is returned by
// whichever call installed the registration (Class.HookEntries,
// Location.Hook) and stays live until Clear is called or the owning
// Session shuts down.
type Hook struct {
	sess    *Session
	reqID   uint32
	evtKind byte
	ch      chan any
}

// Get blocks until an event arrives on this hook or ctx is canceled.
func (h *Hook) Get(ctx context.Context) (any, error) {
	select {
	case v, ok := <-h.ch:
		if !ok {
			return nil, fmt.Errorf("jdwp: hook %d closed", h.reqID)
		}
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Clear issues EventRequest.Clear against the VM and removes this hook
// from its Session's EventMap. Unlike the original source's Hook.clear,
// which referenced an undefined identifier and never reached the VM at
// all, this actually tells the VM to stop sending the event.
func (h *Hook) Clear() error {
	enc := wire.NewEncoder(h.sess.IDSizes())
	enc.PackU8(h.evtKind).PackU32(h.reqID)
	if _, err := h.sess.request(csEventRequest, lowByte(cmdEventRequestClear), enc); err != nil {
		return err
	}
	h.sess.events.unregister(h.reqID)
	return nil
}

// EventMap routes decoded composite-event bodies to the Hook registered
// for their request id.
type EventMap struct {
	sess  *Session
	depth int

	mu    sync.Mutex
	hooks map[uint32]*Hook
}

// NewEventMap builds an EventMap bound to sess, whose per-hook channels
// are buffered to depth entries before a slow reader starts dropping
// events.
func NewEventMap(sess *Session, depth int) *EventMap {
	return &EventMap{sess: sess, depth: depth, hooks: make(map[uint32]*Hook)}
}

func (m *EventMap) register(reqID uint32, evtKind byte) (*Hook, error) {
	h := &Hook{sess: m.sess, reqID: reqID, evtKind: evtKind, ch: make(chan any, m.depth)}
	m.mu.Lock()
	m.hooks[reqID] = h
	m.mu.Unlock()
	return h, nil
}

func (m *EventMap) unregister(reqID uint32) {
	m.mu.Lock()
	delete(m.hooks, reqID)
	m.mu.Unlock()
}

// handleComposite is installed as the Transport's event hook for the
// 0x4064 composite event command. It never returns an error to a caller
// since it runs off the transport's own delivery goroutine; decode
// failures and unregistered event kinds are logged and abort the rest of
// this composite's events, matching how a malformed packet would abort
// andbug's own unpack loop.
func (m *EventMap) handleComposite(_ uint32, payload []byte) {
	dec := wire.NewDecoder(payload, m.sess.IDSizes())
	if _, err := dec.UnpackU8(); err != nil { // suspendPolicy, not needed for routing
		m.sess.log.Error("event composite: bad suspend policy", "err", err)
		return
	}
	count, err := dec.UnpackU32()
	if err != nil {
		m.sess.log.Error("event composite: bad event count", "err", err)
		return
	}

	for i := uint32(0); i < count; i++ {
		kind, err := dec.UnpackU8()
		if err != nil {
			m.sess.log.Error("event composite: bad event kind", "err", err)
			return
		}
		decode := eventDecoders[kind]
		if decode == nil {
			err := &RequestError{Code: -1, CommandSet: csEvent, Command: kind}
			m.sess.log.Error("event composite: unregistered event kind", "kind", kind, "err", err)
			observability.RecordEvent(fmt.Sprintf("%d", kind), "unregistered")
			return
		}
		reqID, evt, err := decode(m.sess, dec)
		if err != nil {
			m.sess.log.Error("event composite: decode failed", "kind", kind, "err", err)
			return
		}

		m.mu.Lock()
		hook := m.hooks[reqID]
		m.mu.Unlock()
		if hook == nil {
			observability.RecordEvent(fmt.Sprintf("%d", kind), "dropped")
			continue
		}
		select {
		case hook.ch <- evt:
			observability.RecordEvent(fmt.Sprintf("%d", kind), "delivered")
		default:
			observability.RecordEvent(fmt.Sprintf("%d", kind), "queue_full")
		}
	}
}

// closeAll closes every live hook's channel, waking any blocked Get calls
// with a closed-channel error. Called once from Session.Shutdown.
func (m *EventMap) closeAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for reqID, h := range m.hooks {
		close(h.ch)
		delete(m.hooks, reqID)
	}
	return nil
}
