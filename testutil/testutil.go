// Package testutil provides mocks for exercising jdwp and transport
// consumers without a real Dalvik VM on the other end of the wire.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/transport"
)

// =============================================================================
// MOCK TRANSPORT
// =============================================================================

// reply is one canned (code, payload, err) triple a MockTransport will
// hand back for a given command set/command pair.
type reply struct {
	code    uint16
	payload []byte
	err     error
}

// MockTransport implements transport.Transport for tests. Configure
// replies with WithReply/WithError, then drive Session calls against it;
// every Request is recorded for assertion.
type MockTransport struct {
	mu       sync.Mutex
	replies  map[[2]byte][]reply
	calls    []Call
	hook     transport.EventHandlerFunc
	closed   bool
	closeErr error
}

// Call records a single Request invocation for assertion.
type Call struct {
	CommandSet byte
	Command    byte
	Payload    []byte
}

// NewMockTransport creates an empty MockTransport. Requests with no
// configured reply return code 0 and an empty payload.
func NewMockTransport() *MockTransport {
	return &MockTransport{replies: make(map[[2]byte][]reply)}
}

// WithReply queues a successful reply for the given command set/command.
// Replies for the same key are returned in the order they were queued;
// once exhausted, the last one configured keeps repeating.
func (m *MockTransport) WithReply(commandSet, command byte, code uint16, payload []byte) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]byte{commandSet, command}
	m.replies[key] = append(m.replies[key], reply{code: code, payload: payload})
	return m
}

// WithError queues a transport-level failure for the given command set/command.
func (m *MockTransport) WithError(commandSet, command byte, err error) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]byte{commandSet, command}
	m.replies[key] = append(m.replies[key], reply{err: err})
	return m
}

// WithCloseError configures Close to return err.
func (m *MockTransport) WithCloseError(err error) *MockTransport {
	m.closeErr = err
	return m
}

// Request implements transport.Transport. It honors ctx cancellation like
// a real transport would, returning ctx.Err() instead of a canned reply
// once the caller's deadline has already passed.
func (m *MockTransport) Request(ctx context.Context, commandSet, command byte, payload []byte) (uint16, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, Call{CommandSet: commandSet, Command: command, Payload: payload})
	key := [2]byte{commandSet, command}
	queue := m.replies[key]
	var r reply
	switch {
	case len(queue) == 0:
		r = reply{code: 0, payload: []byte{}}
	case len(queue) == 1:
		r = queue[0]
	default:
		r, m.replies[key] = queue[0], queue[1:]
	}
	m.mu.Unlock()

	if r.err != nil {
		return 0, nil, r.err
	}
	return r.code, r.payload, nil
}

// Hook implements transport.Transport, recording fn so tests can drive
// it directly with DeliverEvent.
func (m *MockTransport) Hook(fn transport.EventHandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = fn
}

// Close implements transport.Transport.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

// DeliverEvent invokes the registered event hook as if payload had
// arrived from the VM under packet id. It is a no-op if no hook has been
// registered yet.
func (m *MockTransport) DeliverEvent(id uint32, payload []byte) {
	m.mu.Lock()
	hook := m.hook
	m.mu.Unlock()
	if hook != nil {
		hook(id, payload)
	}
}

// Calls returns a copy of every Request call observed so far.
func (m *MockTransport) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Request calls observed so far.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Closed reports whether Close has been called.
func (m *MockTransport) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// =============================================================================
// MOCK LOGGER
// =============================================================================

// LogEntry records one call to a MockLogger level method.
type LogEntry struct {
	Level   string
	Message string
	Fields  []any
}

// logState is shared by a MockLogger and every child produced by Bind, so
// assertions against the root see entries logged through any child.
type logState struct {
	mu   sync.Mutex
	logs []LogEntry
}

// MockLogger implements observability.Logger, capturing every call for
// assertion instead of writing anywhere.
type MockLogger struct {
	state *logState
	ctx   []any
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger { return &MockLogger{state: &logState{}} }

func (m *MockLogger) log(level, msg string, kv ...any) {
	fields := make([]any, 0, len(m.ctx)+len(kv))
	fields = append(fields, m.ctx...)
	fields = append(fields, kv...)
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.logs = append(m.state.logs, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, kv ...any) { m.log("debug", msg, kv...) }
func (m *MockLogger) Info(msg string, kv ...any)  { m.log("info", msg, kv...) }
func (m *MockLogger) Warn(msg string, kv ...any)  { m.log("warn", msg, kv...) }
func (m *MockLogger) Error(msg string, kv ...any) { m.log("error", msg, kv...) }

// Bind returns a child MockLogger that prefixes future entries with kv
// while still recording into the same shared log, mirroring StdLogger's
// child-logger semantics.
func (m *MockLogger) Bind(kv ...any) observability.Logger {
	ctx := make([]any, 0, len(m.ctx)+len(kv))
	ctx = append(ctx, m.ctx...)
	ctx = append(ctx, kv...)
	return &MockLogger{state: m.state, ctx: ctx}
}

// Logs returns a copy of every captured log entry.
func (m *MockLogger) Logs() []LogEntry {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := make([]LogEntry, len(m.state.logs))
	copy(out, m.state.logs)
	return out
}

// HasLog reports whether a log entry at level with msg was captured.
func (m *MockLogger) HasLog(level, msg string) bool {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	for _, e := range m.state.logs {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Clear discards all captured log entries.
func (m *MockLogger) Clear() {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.logs = nil
}

// =============================================================================
// ASSERTION HELPERS
// =============================================================================

// AssertCalled returns an error unless mt observed at least one Request
// for the given command set/command.
func AssertCalled(mt *MockTransport, commandSet, command byte) error {
	for _, c := range mt.Calls() {
		if c.CommandSet == commandSet && c.Command == command {
			return nil
		}
	}
	return fmt.Errorf("testutil: expected a request for command set %d command %d, none observed", commandSet, command)
}
