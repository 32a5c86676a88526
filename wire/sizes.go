// Package wire implements the JDWP typed binary codec: packing and
// unpacking of primitive fields, length-prefixed strings, and the
// ID-family fields whose width is negotiated per session.
package wire

// IDSizes holds the ID field widths negotiated with the target VM via
// VirtualMachine.IDSizes (JDWP command 1/7). Every size is either 4 or 8.
// Until a session completes its handshake, DefaultIDSizes (8-byte ids,
// Dalvik's common case) is used.
type IDSizes struct {
	FieldIDSize     int
	MethodIDSize    int
	ObjectIDSize    int
	ReferenceTypeIDSize int
	FrameIDSize     int
}

// DefaultIDSizes returns the 8-byte-everything layout Dalvik typically
// negotiates. Callers should replace this with the VM's actual reply as
// soon as the handshake completes.
func DefaultIDSizes() IDSizes {
	return IDSizes{
		FieldIDSize:         8,
		MethodIDSize:        8,
		ObjectIDSize:        8,
		ReferenceTypeIDSize: 8,
		FrameIDSize:         8,
	}
}
