package jdwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

func TestDecodeValue_Primitives(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	sess := newTestSession(testutil.NewMockTransport())

	cases := []struct {
		name string
		pack func(*wire.Encoder)
		want any
	}{
		{"int", func(e *wire.Encoder) { e.PackU8('I').PackInt32(42) }, int32(42)},
		{"long", func(e *wire.Encoder) { e.PackU8('J').PackInt64(42) }, int64(42)},
		{"byte", func(e *wire.Encoder) { e.PackU8('B').PackU8(9) }, byte(9)},
		{"boolean true", func(e *wire.Encoder) { e.PackU8('Z').PackBool(true) }, true},
		{"void", func(e *wire.Encoder) { e.PackU8('V') }, nil},
		{"char", func(e *wire.Encoder) { e.PackU8('C').PackU8('x') }, rune('x')},
		{"short", func(e *wire.Encoder) { e.PackU8('S').PackU16(300) }, int16(300)},
		{"float", func(e *wire.Encoder) { e.PackU8('F').PackFloat32(1.5) }, float32(1.5)},
		{"double", func(e *wire.Encoder) { e.PackU8('D').PackFloat64(2.5) }, float64(2.5)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc := wire.NewEncoder(sizes)
			tc.pack(enc)
			dec := wire.NewDecoder(enc.Bytes(), sizes)
			got, err := decodeValue(sess, dec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeValue_ObjectAndThreadKindsShareDecoder(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	sess := newTestSession(testutil.NewMockTransport())

	for _, tag := range []byte{'L', 't', 'g', 'l', 'c'} {
		enc := wire.NewEncoder(sizes)
		enc.PackU8(tag)
		enc.PackObjectID(wire.ObjectID(11))
		dec := wire.NewDecoder(enc.Bytes(), sizes)

		got, err := decodeValue(sess, dec)
		require.NoError(t, err)
		obj, ok := got.(*Object)
		require.True(t, ok)
		assert.Equal(t, wire.ObjectID(11), obj.ID())
	}
}

func TestDecodeValue_UnrecognizedTagIsRequestError(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	sess := newTestSession(testutil.NewMockTransport())

	enc := wire.NewEncoder(sizes)
	enc.PackU8(0xFF)
	dec := wire.NewDecoder(enc.Bytes(), sizes)

	_, err := decodeValue(sess, dec)
	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestDecodeValue_String(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport().WithReply(csStringReference, lowByte(cmdStringValue), 0,
		func() []byte {
			e := wire.NewEncoder(sizes)
			e.PackString("hello")
			return e.Bytes()
		}())
	sess := newTestSession(mt)

	enc := wire.NewEncoder(sizes)
	enc.PackU8('s')
	enc.PackObjectID(wire.ObjectID(3))
	dec := wire.NewDecoder(enc.Bytes(), sizes)

	got, err := decodeValue(sess, dec)
	require.NoError(t, err)
	str, ok := got.(*String)
	require.True(t, ok)

	data, err := str.Data()
	require.NoError(t, err)
	assert.Equal(t, "hello", data)
}
