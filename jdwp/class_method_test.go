package jdwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

func classWithMethods(t *testing.T, mt *testutil.MockTransport) *Class {
	t.Helper()
	sizes := wire.DefaultIDSizes()
	sess := newTestSession(mt)

	enc := wire.NewEncoder(sizes)
	enc.PackU32(1)
	enc.Pack("m$$$4", wire.MethodID(1), "run", "()V", "", uint32(0))
	mt.WithReply(csReferenceType, lowByte(cmdRefTypeMethods), 0, enc.Bytes())

	return sess.classByID(wire.TypeID(5))
}

// =============================================================================
// CLASS.METHODS / METHODSFILTERED
// =============================================================================

func TestClass_Methods_LoadsOnceAndCaches(t *testing.T) {
	mt := testutil.NewMockTransport()
	class := classWithMethods(t, mt)

	first, err := class.Methods()
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "run", first[0].Name())

	second, err := class.Methods()
	require.NoError(t, err)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, mt.CallCount())
}

func TestClass_MethodsFiltered_ByNameAndJni(t *testing.T) {
	mt := testutil.NewMockTransport()
	class := classWithMethods(t, mt)

	byName, err := class.MethodsFiltered("run", "")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	byBoth, err := class.MethodsFiltered("run", "()V")
	require.NoError(t, err)
	assert.Len(t, byBoth, 1)

	mismatched, err := class.MethodsFiltered("run", "()I")
	require.NoError(t, err)
	assert.Empty(t, mismatched)

	missing, err := class.MethodsFiltered("missing", "")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestClass_Name_StripsSignatureDecoration(t *testing.T) {
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)
	c := sess.classByID(wire.TypeID(1))
	c.setSignature(1, "Ljava/lang/String;", "", 0)
	assert.Equal(t, "java.lang.String", c.Name())
}

// =============================================================================
// METHOD LINE TABLE / SLOT TABLE
// =============================================================================

func TestMethod_LineTable_NativeMethodHasNoLocations(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)
	m := sess.methodByID(wire.TypeID(1), wire.MethodID(1))

	enc := wire.NewEncoder(sizes)
	enc.PackU64(^uint64(0))
	enc.PackU64(^uint64(0))
	enc.PackU32(0)
	mt.WithReply(csMethod, lowByte(cmdMethodLineTable), 0, enc.Bytes())

	first, err := m.FirstLoc()
	require.NoError(t, err)
	assert.Nil(t, first)

	table, err := m.LineTable()
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestMethod_Slots_PopulatesSlotAttributesAsSideEffect(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)
	m := sess.methodByID(wire.TypeID(1), wire.MethodID(1))

	enc := wire.NewEncoder(sizes)
	enc.PackU32(1) // argCnt
	enc.PackU32(1) // count
	enc.Pack("8$$$44", uint64(0), "x", "I", "", uint32(10), uint32(0))
	mt.WithReply(csMethod, lowByte(cmdMethodVariableTableWithGeneric), 0, enc.Bytes())

	slot := sess.slotByIndex(wire.TypeID(1), wire.MethodID(1), 0)
	name, err := slot.Name()
	require.NoError(t, err)
	assert.Equal(t, "x", name)

	slots, err := m.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Same(t, slot, slots[0], "Slot resolved before and after the load must be the same pool entry")
}

// =============================================================================
// LOCATION.SLOTS SCOPE FILTER
// =============================================================================

func TestLocation_Slots_FiltersByScope(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)

	enc := wire.NewEncoder(sizes)
	enc.PackU32(0)
	enc.PackU32(2)
	enc.Pack("8$$$44", uint64(0), "inScope", "I", "", uint32(10), uint32(0))
	enc.Pack("8$$$44", uint64(20), "outOfScope", "I", "", uint32(5), uint32(1))
	mt.WithReply(csMethod, lowByte(cmdMethodVariableTableWithGeneric), 0, enc.Bytes())

	loc := sess.locationByTriple(wire.TypeID(1), wire.MethodID(1), 5)
	slots, err := loc.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 1)
	name, err := slots[0].Name()
	require.NoError(t, err)
	assert.Equal(t, "inScope", name)
}

func TestLocation_Slots_NativeReturnsEmptyWithoutRequest(t *testing.T) {
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)
	loc := sess.locationByTriple(wire.TypeID(1), wire.MethodID(1), ^uint64(0))

	slots, err := loc.Slots()
	require.NoError(t, err)
	assert.Nil(t, slots)
	assert.Equal(t, 0, mt.CallCount())
}
