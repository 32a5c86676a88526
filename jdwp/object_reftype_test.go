package jdwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

func TestObject_RefType_LoadsOnceAndCaches(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackU8(1)
	enc.PackTypeID(wire.TypeID(44))
	mt := testutil.NewMockTransport().WithReply(csObjectReference, lowByte(cmdObjectReferenceType), 0, enc.Bytes())
	sess := newTestSession(mt)

	obj, err := sess.objectByID(9)
	require.NoError(t, err)

	rt, err := obj.RefType()
	require.NoError(t, err)
	assert.Equal(t, wire.TypeID(44), rt.ID())

	rt2, err := obj.RefType()
	require.NoError(t, err)
	assert.Same(t, rt, rt2)
	assert.Equal(t, 1, mt.CallCount())
}

func TestRefType_Jni_And_Gen_ShareOneLoad(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackString("Lfoo/Bar;")
	enc.PackString("")
	mt := testutil.NewMockTransport().WithReply(csReferenceType, lowByte(cmdRefTypeSignatureWithGeneric), 0, enc.Bytes())
	sess := newTestSession(mt)

	rt := sess.refTypeByID(1, wire.TypeID(3))
	jni, err := rt.Jni()
	require.NoError(t, err)
	assert.Equal(t, "Lfoo/Bar;", jni)

	gen, err := rt.Gen()
	require.NoError(t, err)
	assert.Equal(t, "", gen)
	assert.Equal(t, 1, mt.CallCount(), "Jni and Gen share the same signature load")
}

func TestRefType_IsIndependentOfClassSignature(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackString("Lrt/Own;")
	enc.PackString("")
	mt := testutil.NewMockTransport().WithReply(csReferenceType, lowByte(cmdRefTypeSignatureWithGeneric), 0, enc.Bytes())
	sess := newTestSession(mt)

	class := sess.classByID(wire.TypeID(3))
	class.setSignature(1, "Lclass/Loaded;", "", 0)

	rt := sess.refTypeByID(1, wire.TypeID(3))
	jni, err := rt.Jni()
	require.NoError(t, err)

	assert.Equal(t, "Lrt/Own;", jni, "RefType issues its own signature load, unaffected by Class.setSignature")
	assert.Equal(t, "Lclass/Loaded;", class.Jni())
}
