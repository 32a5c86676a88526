package jdwp

import (
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/wire"
)

// Location is keyed by (class-id, method-id, code-index). An index of
// all-ones denotes a native frame (see wire.Location.Native). Line is set
// lazily by whichever line-table load first touches this location; it has
// no group of its own since it is a byproduct of Method's line-table load.
type Location struct {
	sess *Session
	cid  wire.TypeID
	mid  wire.MethodID
	idx  uint64

	mu   sync.Mutex
	line int32
}

func newLocation(sess *Session, cid wire.TypeID, mid wire.MethodID, idx uint64) *Location {
	return &Location{sess: sess, cid: cid, mid: mid, idx: idx}
}

// Class resolves the declaring class of this location's method.
func (l *Location) Class() *Class { return l.sess.classByID(l.cid) }

// Method resolves this location's declaring method.
func (l *Location) Method() *Method { return l.sess.methodByID(l.cid, l.mid) }

// Index returns the raw bytecode index.
func (l *Location) Index() uint64 { return l.idx }

// Native reports whether this location is outside bytecode (a native
// method frame).
func (l *Location) Native() bool { return l.idx == ^uint64(0) }

func (l *Location) setLine(line int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.line = line
}

// Line returns the source line number last recorded for this location by
// a line-table load, or 0 if none has run yet.
func (l *Location) Line() int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.line
}

func (l *Location) String() string {
	if !l.Native() {
		return fmt.Sprintf("%s:%d", l.Method(), l.idx)
	}
	return l.Method().String()
}

// toWire converts to the raw wire representation for packing, tagging it
// with the owning class's type tag.
func (l *Location) toWire() wire.Location {
	return wire.Location{Tag: l.Class().Tag(), Type: l.cid, Method: l.mid, Index: l.idx}
}

// Slots returns the subset of the declaring method's slot table whose
// scope [firstLoc, firstLoc+locLength) contains this location's index.
// Native locations always return the empty set without issuing any
// request. For other locations the method's slot table is loaded on first
// use.
func (l *Location) Slots() ([]*Slot, error) {
	if l.Native() {
		return nil, nil
	}
	method := l.Method()
	allSlots, err := method.Slots()
	if err != nil {
		return nil, err
	}
	out := make([]*Slot, 0, len(allSlots))
	for _, s := range allSlots {
		first, length, err := s.Scope()
		if err != nil {
			return nil, err
		}
		if l.idx < first || l.idx-first >= length {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Hook installs a method-entry breakpoint at this exact location (JDWP
// modifier kind 7, LocationOnly) and returns the Hook that receives
// (Thread, Location) pairs each time execution reaches it.
func (l *Location) Hook() (*Hook, error) {
	enc := wire.NewEncoder(l.sess.IDSizes())
	enc.PackU8(eventKindMethodEntry).
		PackU8(suspendPolicyEventThread).
		PackU32(1).
		PackU8(modKindLocationOnly).
		PackLocation(l.toWire())

	dec, err := l.sess.request(csEventRequest, lowByte(cmdEventRequestSet), enc)
	if err != nil {
		return nil, err
	}
	reqID, err := dec.UnpackU32()
	if err != nil {
		return nil, &CodecError{Op: "EventRequest.Set.requestID", Err: err}
	}
	return l.sess.events.register(reqID, eventKindMethodEntry)
}
