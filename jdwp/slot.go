package jdwp

import (
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/wire"
)

// Slot is keyed by (class-id, method-id, index). Its attributes are
// loaded together with every other slot of the same method by
// Method.Slots (VariableTableWithGeneric); there is no independent
// per-slot loader (see DESIGN.md's Open Question 2 resolution, which
// fixes the original's broken load_slot by routing through the parent
// Method's slot-table load instead of a mythical Class.load_slots).
type Slot struct {
	sess *Session
	cid  wire.TypeID
	mid  wire.MethodID
	idx  int32

	mu        sync.Mutex
	populated bool
	firstLoc  uint64
	locLength uint32
	name      string
	jni       string
	gen       string
}

func newSlot(sess *Session, cid wire.TypeID, mid wire.MethodID, idx int32) *Slot {
	return &Slot{sess: sess, cid: cid, mid: mid, idx: idx}
}

// Method resolves this slot's declaring method.
func (s *Slot) Method() *Method { return s.sess.methodByID(s.cid, s.mid) }

// Index returns the slot's index within its method's variable table.
func (s *Slot) Index() int32 { return s.idx }

func (s *Slot) setAttributes(firstLoc uint64, locLength uint32, name, jni, gen string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.populated = true
	s.firstLoc = firstLoc
	s.locLength = locLength
	s.name = name
	s.jni = jni
	s.gen = gen
}

// ensureLoaded triggers the parent method's slot-table load if this slot
// has not yet had its attributes populated, then returns them.
func (s *Slot) ensureLoaded() error {
	s.mu.Lock()
	done := s.populated
	s.mu.Unlock()
	if done {
		return nil
	}
	_, err := s.Method().Slots()
	return err
}

// Scope returns the [firstLoc, firstLoc+locLength) code-index range this
// slot is valid within.
func (s *Slot) Scope() (first uint64, length uint32, err error) {
	if err := s.ensureLoaded(); err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstLoc, s.locLength, nil
}

// Name returns the slot's variable name.
func (s *Slot) Name() (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, nil
}

// Jni returns the slot's JNI-style type signature.
func (s *Slot) Jni() (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jni, nil
}

// Gen returns the slot's generic type signature, empty if none.
func (s *Slot) Gen() (string, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen, nil
}

// Tag returns the value tag derived from the first byte of the slot's
// JNI signature (e.g. 'I' for int, 'L' for an object reference).
func (s *Slot) Tag() (byte, error) {
	jni, err := s.Jni()
	if err != nil {
		return 0, err
	}
	if jni == "" {
		return 0, fmt.Errorf("jdwp: slot %d has empty jni signature", s.idx)
	}
	return jni[0], nil
}
