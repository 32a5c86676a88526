package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrShortBuffer is returned when a decode operation runs past the end of
// the available bytes. It is always a fatal condition for the packet
// being decoded.
var ErrShortBuffer = errors.New("wire: short buffer")

// Decoder reads fields out of a fixed byte slice, using sizes for any
// ID-family field it reads. Decoders are not safe for concurrent use.
type Decoder struct {
	data  []byte
	pos   int
	sizes IDSizes
}

// NewDecoder returns a Decoder over data, sizing ID fields per sizes.
func NewDecoder(data []byte, sizes IDSizes) *Decoder {
	return &Decoder{data: data, sizes: sizes}
}

// Remaining reports how many bytes are left to read.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

func (d *Decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, ErrShortBuffer
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *Decoder) UnpackU8() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) UnpackBool() (bool, error) {
	v, err := d.UnpackU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func (d *Decoder) UnpackU16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (d *Decoder) UnpackU32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *Decoder) UnpackInt32() (int32, error) {
	v, err := d.UnpackU32()
	return int32(v), err
}

func (d *Decoder) UnpackU64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (d *Decoder) UnpackInt64() (int64, error) {
	v, err := d.UnpackU64()
	return int64(v), err
}

func (d *Decoder) UnpackFloat32() (float32, error) {
	v, err := d.UnpackU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (d *Decoder) UnpackFloat64() (float64, error) {
	v, err := d.UnpackU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// UnpackString reads a u32 length prefix followed by that many UTF-8 bytes.
func (d *Decoder) UnpackString() (string, error) {
	n, err := d.UnpackU32()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Decoder) unpackSizedID(size int) (uint64, error) {
	switch size {
	case 4:
		v, err := d.UnpackU32()
		return uint64(v), err
	case 8:
		return d.UnpackU64()
	default:
		panic(fmt.Sprintf("wire: unsupported id size %d", size))
	}
}

func (d *Decoder) UnpackObjectID() (ObjectID, error) {
	v, err := d.unpackSizedID(d.sizes.ObjectIDSize)
	return ObjectID(v), err
}

func (d *Decoder) UnpackTypeID() (TypeID, error) {
	v, err := d.unpackSizedID(d.sizes.ReferenceTypeIDSize)
	return TypeID(v), err
}

func (d *Decoder) UnpackMethodID() (MethodID, error) {
	v, err := d.unpackSizedID(d.sizes.MethodIDSize)
	return MethodID(v), err
}

func (d *Decoder) UnpackFieldID() (FieldID, error) {
	v, err := d.unpackSizedID(d.sizes.FieldIDSize)
	return FieldID(v), err
}

func (d *Decoder) UnpackFrameID() (FrameID, error) {
	v, err := d.unpackSizedID(d.sizes.FrameIDSize)
	return FrameID(v), err
}

// UnpackLocation reads tag + type id + method id + 8-byte code index.
func (d *Decoder) UnpackLocation() (Location, error) {
	tag, err := d.UnpackU8()
	if err != nil {
		return Location{}, err
	}
	typ, err := d.UnpackTypeID()
	if err != nil {
		return Location{}, err
	}
	meth, err := d.UnpackMethodID()
	if err != nil {
		return Location{}, err
	}
	idx, err := d.UnpackU64()
	if err != nil {
		return Location{}, err
	}
	return Location{Tag: tag, Type: typ, Method: meth, Index: idx}, nil
}

// Unpack interprets format the same way Encoder.Pack does and returns the
// decoded values in order. It stops and returns an error at the first
// short read.
func (d *Decoder) Unpack(format string) ([]any, error) {
	out := make([]any, 0, len(format))
	for _, tok := range format {
		var (
			v   any
			err error
		)
		switch tok {
		case '1':
			v, err = d.UnpackU8()
		case '2':
			v, err = d.UnpackU16()
		case '4':
			v, err = d.UnpackU32()
		case 'i':
			v, err = d.UnpackInt32()
		case '8':
			v, err = d.UnpackU64()
		case 'l':
			v, err = d.UnpackInt64()
		case 'o':
			v, err = d.UnpackObjectID()
		case 't':
			v, err = d.UnpackTypeID()
		case 'm':
			v, err = d.UnpackMethodID()
		case 'f':
			v, err = d.UnpackFrameID()
		case 'F':
			v, err = d.UnpackFieldID()
		case 'L':
			v, err = d.UnpackLocation()
		case '$':
			v, err = d.UnpackString()
		default:
			panic(fmt.Sprintf("wire: unknown Unpack token %q", tok))
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
