package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder accumulates a packet payload in a byte buffer, using sizes for
// any ID-family field it writes. Encoders are not safe for concurrent use;
// each request builds its own.
type Encoder struct {
	buf   bytes.Buffer
	sizes IDSizes
}

// NewEncoder returns an Encoder that will size ID fields per sizes.
func NewEncoder(sizes IDSizes) *Encoder {
	return &Encoder{sizes: sizes}
}

// Bytes returns the accumulated payload.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Len reports the number of bytes accumulated so far.
func (e *Encoder) Len() int { return e.buf.Len() }

func (e *Encoder) PackU8(v byte) *Encoder {
	e.buf.WriteByte(v)
	return e
}

func (e *Encoder) PackBool(v bool) *Encoder {
	if v {
		return e.PackU8(1)
	}
	return e.PackU8(0)
}

func (e *Encoder) PackU16(v uint16) *Encoder {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	e.buf.Write(tmp[:])
	return e
}

func (e *Encoder) PackU32(v uint32) *Encoder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	e.buf.Write(tmp[:])
	return e
}

func (e *Encoder) PackInt32(v int32) *Encoder {
	return e.PackU32(uint32(v))
}

func (e *Encoder) PackU64(v uint64) *Encoder {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	e.buf.Write(tmp[:])
	return e
}

func (e *Encoder) PackInt64(v int64) *Encoder {
	return e.PackU64(uint64(v))
}

func (e *Encoder) PackFloat32(v float32) *Encoder {
	return e.PackU32(math.Float32bits(v))
}

func (e *Encoder) PackFloat64(v float64) *Encoder {
	return e.PackU64(math.Float64bits(v))
}

// PackString writes a u32 length prefix followed by the UTF-8 bytes,
// JDWP's sole string encoding (the '$' format token in the original
// pack-string DSL).
func (e *Encoder) PackString(s string) *Encoder {
	e.PackU32(uint32(len(s)))
	e.buf.WriteString(s)
	return e
}

func (e *Encoder) packSizedID(v uint64, size int) *Encoder {
	switch size {
	case 4:
		return e.PackU32(uint32(v))
	case 8:
		return e.PackU64(v)
	default:
		panic(fmt.Sprintf("wire: unsupported id size %d", size))
	}
}

func (e *Encoder) PackObjectID(id ObjectID) *Encoder {
	return e.packSizedID(uint64(id), e.sizes.ObjectIDSize)
}

func (e *Encoder) PackTypeID(id TypeID) *Encoder {
	return e.packSizedID(uint64(id), e.sizes.ReferenceTypeIDSize)
}

func (e *Encoder) PackMethodID(id MethodID) *Encoder {
	return e.packSizedID(uint64(id), e.sizes.MethodIDSize)
}

func (e *Encoder) PackFieldID(id FieldID) *Encoder {
	return e.packSizedID(uint64(id), e.sizes.FieldIDSize)
}

func (e *Encoder) PackFrameID(id FrameID) *Encoder {
	return e.packSizedID(uint64(id), e.sizes.FrameIDSize)
}

// PackLocation writes a location as tag + type id + method id + 8-byte
// code index, matching the original DSL's "1tm8" combination.
func (e *Encoder) PackLocation(loc Location) *Encoder {
	e.PackU8(loc.Tag)
	e.PackTypeID(loc.Type)
	e.PackMethodID(loc.Method)
	e.PackU64(loc.Index)
	return e
}

// Pack interprets format as a sequence of tokens and packs args in order:
//
//	1  u8         2  u16        4  u32       i  int32
//	8  u64        l  int64      o  object id  t  type id
//	m  method id  f  frame id   F  field id   L  location   $  string
//
// Pack panics on a format/argument mismatch; callers control both sides of
// this call and such a mismatch is a programmer error, not a runtime
// condition to recover from.
func (e *Encoder) Pack(format string, args ...any) *Encoder {
	if len(format) != len(args) {
		panic(fmt.Sprintf("wire: Pack format %q expects %d args, got %d", format, len(format), len(args)))
	}
	for i, tok := range format {
		arg := args[i]
		switch tok {
		case '1':
			e.PackU8(arg.(byte))
		case '2':
			e.PackU16(arg.(uint16))
		case '4':
			e.PackU32(arg.(uint32))
		case 'i':
			e.PackInt32(arg.(int32))
		case '8':
			e.PackU64(arg.(uint64))
		case 'l':
			e.PackInt64(arg.(int64))
		case 'o':
			e.PackObjectID(arg.(ObjectID))
		case 't':
			e.PackTypeID(arg.(TypeID))
		case 'm':
			e.PackMethodID(arg.(MethodID))
		case 'f':
			e.PackFrameID(arg.(FrameID))
		case 'F':
			e.PackFieldID(arg.(FieldID))
		case 'L':
			e.PackLocation(arg.(Location))
		case '$':
			e.PackString(arg.(string))
		default:
			panic(fmt.Sprintf("wire: unknown Pack token %q", tok))
		}
	}
	return e
}
