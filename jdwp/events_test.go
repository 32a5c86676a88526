package jdwp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottdunlop/godwp/testutil"
	"github.com/scottdunlop/godwp/wire"
)

func compositeWithMethodEntry(sizes wire.IDSizes, reqID uint32, tid wire.ThreadID, loc wire.Location) []byte {
	enc := wire.NewEncoder(sizes)
	enc.PackU8(suspendPolicyAll)
	enc.PackU32(1)
	enc.PackU8(eventKindMethodEntry)
	enc.PackU32(reqID)
	enc.PackObjectID(tid)
	enc.PackLocation(loc)
	return enc.Bytes()
}

// =============================================================================
// HOOK REGISTRATION AND ROUTING
// =============================================================================

func TestEventMap_RoutesToRegisteredHook(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)

	hook, err := sess.events.register(7, eventKindMethodEntry)
	require.NoError(t, err)

	loc := wire.Location{Tag: 1, Type: 3, Method: 4, Index: 0}
	mt.DeliverEvent(1, compositeWithMethodEntry(sizes, 7, wire.ThreadID(2), loc))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := hook.Get(ctx)
	require.NoError(t, err)

	evt, ok := got.(MethodEntryEvent)
	require.True(t, ok)
	assert.Equal(t, wire.ThreadID(2), evt.Thread.ID())
	assert.Equal(t, wire.TypeID(3), evt.Location.Class().ID())
}

func TestEventMap_DropsUnregisteredRequestID(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)

	loc := wire.Location{Tag: 1, Type: 3, Method: 4, Index: 0}
	// No hook registered for request id 99; this must not panic or block.
	mt.DeliverEvent(1, compositeWithMethodEntry(sizes, 99, wire.ThreadID(2), loc))
	_ = sess
}

func TestEventMap_UnregisteredEventKindLogsAndStops(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	mt := testutil.NewMockTransport()
	logger := testutil.NewMockLogger()
	sess := NewSession(mt, nil, logger)

	enc := wire.NewEncoder(sizes)
	enc.PackU8(suspendPolicyAll)
	enc.PackU32(1)
	enc.PackU8(255) // no decoder registered for this kind
	mt.DeliverEvent(1, enc.Bytes())

	assert.True(t, logger.HasLog("error", "event composite: unregistered event kind"))
	_ = sess
}

func TestHook_Clear_IssuesEventRequestClear(t *testing.T) {
	mt := testutil.NewMockTransport().WithReply(csEventRequest, lowByte(cmdEventRequestClear), 0, nil)
	sess := newTestSession(mt)

	hook, err := sess.events.register(3, eventKindMethodEntry)
	require.NoError(t, err)

	require.NoError(t, hook.Clear())
	require.NoError(t, testutil.AssertCalled(mt, csEventRequest, lowByte(cmdEventRequestClear)))

	_, stillRegistered := sess.events.hooks[3]
	assert.False(t, stillRegistered)
}

// =============================================================================
// EVENTREQUEST.SET SUSPEND POLICY
// =============================================================================

func TestLocationHook_UsesEventThreadSuspendPolicy(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackU32(5)
	mt := testutil.NewMockTransport().WithReply(csEventRequest, lowByte(cmdEventRequestSet), 0, enc.Bytes())
	sess := newTestSession(mt)
	loc := sess.locationByTriple(wire.TypeID(1), wire.MethodID(1), 0)

	_, err := loc.Hook()
	require.NoError(t, err)

	calls := mt.Calls()
	require.Len(t, calls, 1)
	// byte 0 is the event kind, byte 1 is the suspend policy.
	assert.Equal(t, byte(suspendPolicyEventThread), calls[0].Payload[1])
}

func TestClassHookEntries_UsesEventThreadSuspendPolicy(t *testing.T) {
	sizes := wire.DefaultIDSizes()
	enc := wire.NewEncoder(sizes)
	enc.PackU32(6)
	mt := testutil.NewMockTransport().WithReply(csEventRequest, lowByte(cmdEventRequestSet), 0, enc.Bytes())
	sess := newTestSession(mt)
	class := sess.classByID(wire.TypeID(1))

	_, err := class.HookEntries()
	require.NoError(t, err)

	calls := mt.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, byte(suspendPolicyEventThread), calls[0].Payload[1])
}

// =============================================================================
// SHUTDOWN CLOSES HOOKS
// =============================================================================

func TestEventMap_CloseAllUnblocksGet(t *testing.T) {
	mt := testutil.NewMockTransport()
	sess := newTestSession(mt)

	hook, err := sess.events.register(1, eventKindMethodEntry)
	require.NoError(t, err)
	require.NoError(t, sess.events.closeAll())

	_, err = hook.Get(context.Background())
	assert.Error(t, err)
}
