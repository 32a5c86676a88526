package jdwp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

// =============================================================================
// THREAD COMMAND NUMBERING
// =============================================================================

func TestThread_Suspend_UsesRealCommandNumber(t *testing.T) {
	mt := testutil.NewMockTransport().WithReply(csThreadReference, 0x02, 0, nil)
	sess := newTestSession(mt)
	th := sess.threadByID(wire.ThreadID(1))

	require.NoError(t, th.Suspend())
	require.NoError(t, testutil.AssertCalled(mt, csThreadReference, 0x02))

	for _, c := range mt.Calls() {
		assert.NotEqual(t, byte(0x01), c.Command, "Suspend must not collide with Name's command byte")
	}
}

func TestThread_Name_And_Suspend_UseDistinctCommands(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	nameReply := wire.NewEncoder(sizes)
	nameReply.PackString("worker")
	mt := testutil.NewMockTransport().
		WithReply(csThreadReference, lowByte(cmdThreadName), 0, nameReply.Bytes()).
		WithReply(csThreadReference, lowByte(cmdThreadSuspend), 0, nil)
	sess := newTestSession(mt)
	th := sess.threadByID(wire.ThreadID(1))

	name, err := th.Name()
	require.NoError(t, err)
	assert.Equal(t, "worker", name)
	require.NoError(t, th.Suspend())

	assert.NotEqual(t, cmdThreadName, cmdThreadSuspend)
}

// =============================================================================
// FRAME POOL IDENTITY AND VALUES SHORT-CIRCUIT
// =============================================================================

func TestThread_Frames_InternsByFrameIDAlone(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackInt32(1)
	enc.PackFrameID(wire.FrameID(77))
	enc.PackLocation(wire.Location{Tag: 1, Type: 1, Method: 1, Index: ^uint64(0)})
	mt := testutil.NewMockTransport().WithReply(csThreadReference, lowByte(cmdThreadFrames), 0, enc.Bytes())
	sess := newTestSession(mt)
	th := sess.threadByID(wire.ThreadID(9))

	frames, err := th.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 1)

	direct := sess.frameByID(wire.FrameID(77))
	assert.Same(t, frames[0], direct, "Frame identity must be keyed by frame-id alone")
}

func TestFrame_Values_NativeFrameShortCircuits(t *testing.T) {
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)
	frame := sess.frameByID(wire.FrameID(1))
	loc := sess.locationByTriple(wire.TypeID(1), wire.MethodID(1), ^uint64(0))
	frame.setLocation(loc, wire.ThreadID(1))

	values, err := frame.Values()
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, 0, mt.CallCount(), "a native frame must not issue StackFrame.GetValues")
}
