package jdwp

import (
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/lazyload"
	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/wire"
)

// Method is keyed by (class-id, method-id). Its attributes split into
// three independently loaded groups: identity (name/jni/gen/flags,
// loaded together with the parent Class's method list), line table
// (firstLoc/lastLoc/lineTable/lineLocs), and slot table (slots).
type Method struct {
	sess *Session
	cid  wire.TypeID
	mid  wire.MethodID

	mu sync.Mutex

	// identity group, set by Class.loadMethods, never loaded directly.
	name  string
	jni   string
	gen   string
	flags uint32

	lineGroup lazyload.Group
	firstLoc  *Location
	lastLoc   *Location
	lineLocs  map[int32]*Location

	slotGroup lazyload.Group
	slots     []*Slot
}

func newMethod(sess *Session, cid wire.TypeID, mid wire.MethodID) *Method {
	return &Method{sess: sess, cid: cid, mid: mid}
}

// Class returns this method's declaring class, resolved through the Pool
// by key rather than through a stored pointer.
func (m *Method) Class() *Class { return m.sess.classByID(m.cid) }

// ID returns the method's method-id, meaningful only relative to Class().
func (m *Method) ID() wire.MethodID { return m.mid }

func (m *Method) setIdentity(name, jni, gen string, flags uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name, m.jni, m.gen, m.flags = name, jni, gen, flags
}

func (m *Method) Name() string  { return m.name }
func (m *Method) Jni() string   { return m.jni }
func (m *Method) Gen() string   { return m.gen }
func (m *Method) Flags() uint32 { return m.flags }

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s%s", m.Class().Name(), m.name, m.jni)
}

// loadLineTable issues Method.LineTable. A method with no line
// information (firstLoc/lastLoc both -1, native methods included) leaves
// firstLoc/lastLoc nil and lineLocs empty, matching the original's
// handling of that case.
func (m *Method) loadLineTable() error {
	enc := wire.NewEncoder(m.sess.IDSizes())
	enc.PackTypeID(m.cid).PackMethodID(m.mid)
	dec, err := m.sess.request(csMethod, lowByte(cmdMethodLineTable), enc)
	if err != nil {
		return err
	}
	first, err := dec.UnpackU64()
	if err != nil {
		return &CodecError{Op: "LineTable.firstLoc", Err: err}
	}
	last, err := dec.UnpackU64()
	if err != nil {
		return &CodecError{Op: "LineTable.lastLoc", Err: err}
	}
	count, err := dec.UnpackU32()
	if err != nil {
		return &CodecError{Op: "LineTable.count", Err: err}
	}

	lineLocs := make(map[int32]*Location, count)
	for i := uint32(0); i < count; i++ {
		index, err := dec.UnpackU64()
		if err != nil {
			return &CodecError{Op: "LineTable.lineCodeIndex", Err: err}
		}
		line, err := dec.UnpackInt32()
		if err != nil {
			return &CodecError{Op: "LineTable.lineNumber", Err: err}
		}
		loc := m.sess.locationByTriple(m.cid, m.mid, index)
		loc.setLine(line)
		lineLocs[line] = loc
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if first == ^uint64(0) || last == ^uint64(0) {
		m.firstLoc = nil
		m.lastLoc = nil
		m.lineLocs = map[int32]*Location{}
		return nil
	}
	m.firstLoc = m.sess.locationByTriple(m.cid, m.mid, first)
	m.lastLoc = m.sess.locationByTriple(m.cid, m.mid, last)
	m.lineLocs = lineLocs
	return nil
}

// FirstLoc returns the method's first bytecode location, loading the line
// table on first access. Returns nil for a method with no line
// information.
func (m *Method) FirstLoc() (*Location, error) {
	if err := m.lineGroup.Load(m.loadLineTable); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.firstLoc, nil
}

// LastLoc mirrors FirstLoc for the method's final bytecode location.
func (m *Method) LastLoc() (*Location, error) {
	if err := m.lineGroup.Load(m.loadLineTable); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastLoc, nil
}

// LineTable returns the method's line number to Location mapping, loading
// it on first access.
func (m *Method) LineTable() (map[int32]*Location, error) {
	if err := m.lineGroup.Load(m.loadLineTable); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lineLocs, nil
}

// loadSlotTable issues Method.VariableTableWithGeneric and fills every
// Slot's attributes as a side effect, the way Slot.load_slot is meant to
// (see DESIGN.md's Open Question 2 resolution).
func (m *Method) loadSlotTable() error {
	enc := wire.NewEncoder(m.sess.IDSizes())
	enc.PackTypeID(m.cid).PackMethodID(m.mid)
	dec, err := m.sess.request(csMethod, lowByte(cmdMethodVariableTableWithGeneric), enc)
	if err != nil {
		return err
	}
	if _, err := dec.UnpackU32(); err != nil { // argCnt, unused by this module
		return &CodecError{Op: "VariableTable.argCnt", Err: err}
	}
	count, err := dec.UnpackU32()
	if err != nil {
		return &CodecError{Op: "VariableTable.count", Err: err}
	}

	slots := make([]*Slot, 0, count)
	for i := uint32(0); i < count; i++ {
		fields, err := dec.Unpack("8$$$44")
		if err != nil {
			return &CodecError{Op: "VariableTable.entry", Err: err}
		}
		codeIndex := fields[0].(uint64)
		name := fields[1].(string)
		jni := fields[2].(string)
		gen := fields[3].(string)
		length := fields[4].(uint32)
		index := fields[5].(uint32)

		slot := m.sess.slotByIndex(m.cid, m.mid, int32(index))
		slot.setAttributes(codeIndex, length, name, jni, gen)
		slots = append(slots, slot)
	}

	m.mu.Lock()
	m.slots = slots
	m.mu.Unlock()
	observability.SetPoolSize("slot", m.sess.slots.Len())
	return nil
}

// Slots returns the method's local-variable slot table, loading it on
// first access.
func (m *Method) Slots() ([]*Slot, error) {
	if err := m.slotGroup.Load(m.loadSlotTable); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots, nil
}
