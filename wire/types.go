package wire

import "fmt"

// ObjectID identifies any JDWP object, including threads and thread
// groups, which are themselves object ids bound by convention rather
// than by a distinct wire type.
type ObjectID uint64

// ThreadID is an ObjectID known to refer to a thread.
type ThreadID = ObjectID

// TypeID identifies a reference type (class, interface, or array type).
type TypeID uint64

// MethodID identifies a method within the reference type that declares it.
type MethodID uint64

// FieldID identifies a field within the reference type that declares it.
type FieldID uint64

// FrameID identifies a stack frame within a suspended thread.
type FrameID uint64

// Location identifies an executable position: a type, a method within
// that type, and a byte-code index within that method. Tag carries the
// reference type's kind (class, interface, array) the same way
// ReferenceTypeID tags do elsewhere in the protocol.
type Location struct {
	Tag      byte
	Type     TypeID
	Method   MethodID
	Index    uint64
}

func (l Location) String() string {
	return fmt.Sprintf("loc{type=%d method=%d index=%d}", l.Type, l.Method, l.Index)
}

// Native reports whether this location refers to a native (non-bytecode)
// method, signaled by an all-ones code index in JDWP.
func (l Location) Native() bool {
	return l.Index == ^uint64(0)
}
