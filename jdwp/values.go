package jdwp

import (
	"github.com/scottdunlop/godwp/wire"
)

// valueDecoderFunc decodes one JDWP tagged value's body, the tag byte
// itself already having been consumed by decodeValue.
type valueDecoderFunc func(sess *Session, dec *wire.Decoder) (any, error)

var valueDecoders [256]valueDecoderFunc

func registerValueDecoder(tag byte, fn valueDecoderFunc) {
	valueDecoders[tag] = fn
}

func init() {
	registerValueDecoder('[', decodeObjectValue)
	registerValueDecoder('B', decodeByteValue)
	registerValueDecoder('C', decodeCharValue)
	registerValueDecoder('F', decodeFloat32Value)
	registerValueDecoder('D', decodeFloat64Value)
	registerValueDecoder('I', decodeInt32Value)
	registerValueDecoder('J', decodeInt64Value)
	registerValueDecoder('S', decodeInt16Value)
	registerValueDecoder('V', decodeVoidValue)
	registerValueDecoder('Z', decodeBoolValue)
	registerValueDecoder('L', decodeObjectValue)
	registerValueDecoder('s', decodeStringValue)
	// thread, thread-group, class-loader, and class-object references all
	// decode the same way: a plain tagged object id.
	registerValueDecoder('t', decodeObjectValue)
	registerValueDecoder('g', decodeObjectValue)
	registerValueDecoder('l', decodeObjectValue)
	registerValueDecoder('c', decodeObjectValue)
}

// decodeValue reads one tagged value off dec: the tag byte, then the
// body, dispatched through valueDecoders. An unrecognized tag is a
// RequestError rather than a CodecError, matching the original's
// treatment of protocol-level surprises.
func decodeValue(sess *Session, dec *wire.Decoder) (any, error) {
	tag, err := dec.UnpackU8()
	if err != nil {
		return nil, &CodecError{Op: "value.tag", Err: err}
	}
	decode := valueDecoders[tag]
	if decode == nil {
		return nil, &RequestError{Code: -1, CommandSet: 0, Command: tag}
	}
	return decode(sess, dec)
}

func decodeObjectValue(sess *Session, dec *wire.Decoder) (any, error) {
	oid, err := dec.UnpackObjectID()
	if err != nil {
		return nil, &CodecError{Op: "value.object", Err: err}
	}
	return sess.objectByID(oid)
}

func decodeByteValue(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackU8()
	if err != nil {
		return nil, &CodecError{Op: "value.byte", Err: err}
	}
	return v, nil
}

func decodeCharValue(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackU8()
	if err != nil {
		return nil, &CodecError{Op: "value.char", Err: err}
	}
	return rune(v), nil
}

func decodeFloat32Value(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackFloat32()
	if err != nil {
		return nil, &CodecError{Op: "value.float", Err: err}
	}
	return v, nil
}

func decodeFloat64Value(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackFloat64()
	if err != nil {
		return nil, &CodecError{Op: "value.double", Err: err}
	}
	return v, nil
}

func decodeInt32Value(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackInt32()
	if err != nil {
		return nil, &CodecError{Op: "value.int", Err: err}
	}
	return v, nil
}

func decodeInt64Value(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackInt64()
	if err != nil {
		return nil, &CodecError{Op: "value.long", Err: err}
	}
	return v, nil
}

func decodeInt16Value(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackU16()
	if err != nil {
		return nil, &CodecError{Op: "value.short", Err: err}
	}
	return int16(v), nil
}

func decodeVoidValue(_ *Session, _ *wire.Decoder) (any, error) {
	return nil, nil
}

func decodeBoolValue(_ *Session, dec *wire.Decoder) (any, error) {
	v, err := dec.UnpackBool()
	if err != nil {
		return nil, &CodecError{Op: "value.boolean", Err: err}
	}
	return v, nil
}

func decodeStringValue(sess *Session, dec *wire.Decoder) (any, error) {
	oid, err := dec.UnpackObjectID()
	if err != nil {
		return nil, &CodecError{Op: "value.string", Err: err}
	}
	obj, err := sess.objectByID(oid)
	if err != nil {
		return nil, err
	}
	return NewString(obj), nil
}
