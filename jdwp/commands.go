package jdwp

// Command set identifiers, matching the JDWP specification's numbering.
const (
	csVirtualMachine    = 1
	csReferenceType     = 2
	csMethod            = 6
	csObjectReference   = 9
	csStringReference   = 10
	csThreadReference   = 11
	csStackFrame        = 16
	csEventRequest      = 15
	csEvent             = 64
)

// Command identifiers within each command set, spelled out the way the
// original source's hex literals were: (commandSet << 8) | command.
const (
	cmdVMAllThreads = 0x0104
	cmdVMSuspend    = 0x0108
	cmdVMResume     = 0x0109
	cmdVMExit       = 0x010A
	cmdVMAllClasses = 0x0114

	cmdRefTypeMethods             = 0x020F
	cmdRefTypeSignatureWithGeneric = 0x020D

	cmdMethodLineTable              = 0x0601
	cmdMethodVariableTableWithGeneric = 0x0605

	cmdObjectReferenceType = 0x0901

	cmdStringValue = 0x0A01

	cmdThreadName       = 0x0B01
	cmdThreadSuspend    = 0x0B02
	cmdThreadResume     = 0x0B03
	cmdThreadFrames     = 0x0B06
	cmdThreadFrameCount = 0x0B07

	cmdStackFrameGetValues = 0x1001

	cmdEventRequestSet   = 0x0F01
	cmdEventRequestClear = 0x0F02

	cmdEventComposite = 0x4064
)

// Event modifier kinds used when installing an EventRequest.Set filter.
const (
	modKindClassOnly    = 4
	modKindLocationOnly = 7
)

// Suspend policies for EventRequest.Set.
const (
	suspendPolicyNone        = 0
	suspendPolicyEventThread = 1
	suspendPolicyAll         = 2
)

// eventKindMethodEntry is the only event kind this module's decoder table
// registers out of the box (spec.md's worked example); callers can
// register additional kinds with registerEventDecoder.
const eventKindMethodEntry = 40

// lowByte extracts the command byte from a (commandSet<<8)|command
// literal, the style the original source's hex command constants used.
func lowByte(v int) byte { return byte(v & 0xFF) }
