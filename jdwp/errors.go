package jdwp

import "fmt"

// RequestError is raised when the VM replies to a request with a nonzero
// error code, or when this module receives an event-kind or value-tag
// byte it has no decoder registered for.
type RequestError struct {
	Code       int
	CommandSet byte
	Command    byte
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("jdwp: request %d/%d failed, code %d", e.CommandSet, e.Command, e.Code)
}

// VoidError is returned in place of an *Object when an object id of 0 is
// decoded. Dalvik uses object id 0 as "no object", most often surfacing
// from a garbage-collected reference rather than a real protocol error.
type VoidError struct{}

func (VoidError) Error() string { return "jdwp: void object reference (id 0)" }

// CodecError wraps a failure to pack or unpack a packet body. It is
// always fatal to the packet in question.
type CodecError struct {
	Op  string
	Err error
}

func (e *CodecError) Error() string { return fmt.Sprintf("jdwp: codec error during %s: %v", e.Op, e.Err) }
func (e *CodecError) Unwrap() error { return e.Err }

// TransportError wraps a failure reported by the Transport collaborator.
// It is always fatal to the Session: every pending request is released
// with this error once it occurs.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("jdwp: transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ShutdownError aggregates the errors encountered while tearing down a
// Session's subsystems. Unwrap exposes the individual errors so
// errors.Is/errors.As can find any of them.
type ShutdownError struct {
	Errs []error
}

func (e *ShutdownError) Error() string {
	if len(e.Errs) == 1 {
		return fmt.Sprintf("jdwp: shutdown error: %v", e.Errs[0])
	}
	return fmt.Sprintf("jdwp: %d shutdown errors: %v", len(e.Errs), e.Errs)
}

func (e *ShutdownError) Unwrap() []error { return e.Errs }
