package jdwp

import "github.com/scottdunlop/godwp/wire"

// methodKey identifies a Method by the reference type that declares it
// plus its method id; method ids are only unique within their declaring
// type, matching JDWP's own addressing.
type methodKey struct {
	class  wire.TypeID
	method wire.MethodID
}

// slotKey identifies a Slot by its declaring method plus its slot index.
type slotKey struct {
	class  wire.TypeID
	method wire.MethodID
	index  int32
}

// locationKey identifies a Location by type, method, and code index, the
// same triple the wire format itself carries (Location.Tag is metadata
// about the type, not part of its identity).
type locationKey struct {
	class  wire.TypeID
	method wire.MethodID
	index  uint64
}

// Frame is keyed by its frame-id alone, not by (thread, frame-id): the
// frame-id the VM hands back already uniquely identifies the frame, and
// the owning thread is a non-interned attribute set at decode time by
// the thread-frames loader (see Frame.setLocation).
