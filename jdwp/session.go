// Package jdwp implements the session-scoped object model and command
// dispatcher for the Java Debug Wire Protocol against a Dalvik/Android
// VM: the entity graph, the event subsystem, and the commands that drive
// both.
package jdwp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scottdunlop/godwp/config"
	"github.com/scottdunlop/godwp/lazyload"
	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/pool"
	"github.com/scottdunlop/godwp/transport"
	"github.com/scottdunlop/godwp/wire"
)

var tracer = observability.Tracer("jdwp")

// Session is the top-level coordinator: it owns the Transport, the
// interning pools for every entity kind, the EventMap, and the
// negotiated ID widths. Only one Session exists per Transport. Any
// goroutine may call into any entity reachable from a Session.
type Session struct {
	id     string
	cfg    *config.Config
	tp     transport.Transport
	log    observability.Logger
	sizes  wire.IDSizes

	classes pool.Pool[wire.TypeID, *Class]
	methods pool.Pool[methodKey, *Method]
	slots   pool.Pool[slotKey, *Slot]
	locs    pool.Pool[locationKey, *Location]
	threads pool.Pool[wire.ThreadID, *Thread]
	frames  pool.Pool[wire.FrameID, *Frame]
	reftyps pool.Pool[wire.TypeID, *RefType]
	objects pool.Pool[wire.ObjectID, *Object]

	classesGroup lazyload.Group

	events *EventMap

	mu        sync.Mutex
	shutdown  bool
	classList []*Class
	classByJni map[string][]*Class
}

// NewSession constructs a Session bound to tp. cfg may be nil, in which
// case config.DefaultConfig() is used. log may be nil, in which case all
// logging is discarded.
func NewSession(tp transport.Transport, cfg *config.Config, log observability.Logger) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	id := "sess_" + uuid.New().String()[:16]
	s := &Session{
		id:         id,
		cfg:        cfg,
		tp:         tp,
		log:        log.Bind("session_id", id),
		sizes:      cfg.DefaultIDSizes,
		classByJni: make(map[string][]*Class),
		classes:    *pool.New[wire.TypeID, *Class](),
		methods:    *pool.New[methodKey, *Method](),
		slots:      *pool.New[slotKey, *Slot](),
		locs:       *pool.New[locationKey, *Location](),
		threads:    *pool.New[wire.ThreadID, *Thread](),
		frames:     *pool.New[wire.FrameID, *Frame](),
		reftyps:    *pool.New[wire.TypeID, *RefType](),
		objects:    *pool.New[wire.ObjectID, *Object](),
	}
	s.events = NewEventMap(s, cfg.EventQueueDepth)
	tp.Hook(s.events.handleComposite)
	return s
}

// ID returns the session's diagnostic identifier, used in log lines and
// metric labels.
func (s *Session) ID() string { return s.id }

// IDSizes returns the ID widths currently in effect.
func (s *Session) IDSizes() wire.IDSizes { return s.sizes }

// SetIDSizes installs the widths negotiated by a prior
// VirtualMachine.IDSizes handshake. It must be called before any other
// command that touches an ID-family field.
func (s *Session) SetIDSizes(sizes wire.IDSizes) { s.sizes = sizes }

// request sends one command and blocks for its reply, instrumenting the
// round trip with logging, metrics, and a span named
// jdwp.<command-set>.<command>. It returns a Decoder positioned at the
// start of the reply payload. The round trip is bounded by
// cfg.RequestTimeout; a reply that doesn't arrive in time comes back as a
// TransportError wrapping context.DeadlineExceeded.
func (s *Session) request(commandSet, command byte, enc *wire.Encoder) (*wire.Decoder, error) {
	start := time.Now()
	csLabel := fmt.Sprintf("%d", commandSet)
	cmdLabel := fmt.Sprintf("%d", command)
	logger := s.log.Bind("command_set", commandSet, "command", command)

	ctx := context.Background()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("jdwp.%s.%s", csLabel, cmdLabel),
		trace.WithAttributes(
			attribute.Int("jdwp.command_set", int(commandSet)),
			attribute.Int("jdwp.command", int(command)),
		))
	defer span.End()

	var payload []byte
	if enc != nil {
		payload = enc.Bytes()
	}

	code, reply, err := s.tp.Request(ctx, commandSet, command, payload)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		logger.Error("jdwp_request_transport_error", "err", err)
		observability.RecordRequest(csLabel, cmdLabel, "transport_error", elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &TransportError{Err: err}
	}
	if code != 0 {
		logger.Warn("jdwp_request_error_code", "code", code)
		observability.RecordRequest(csLabel, cmdLabel, "error", elapsed)
		reqErr := &RequestError{Code: int(code), CommandSet: commandSet, Command: command}
		span.SetStatus(codes.Error, reqErr.Error())
		return nil, reqErr
	}
	observability.RecordRequest(csLabel, cmdLabel, "ok", elapsed)
	logger.Debug("jdwp_request_ok", "duration_s", elapsed)
	span.SetStatus(codes.Ok, "")
	return wire.NewDecoder(reply, s.sizes), nil
}

// AllThreads issues VirtualMachine.AllThreads and returns interned Thread
// entities for every live thread the VM reports.
func (s *Session) AllThreads() ([]*Thread, error) {
	dec, err := s.request(csVirtualMachine, lowByte(cmdVMAllThreads), nil)
	if err != nil {
		return nil, err
	}
	count, err := dec.UnpackInt32()
	if err != nil {
		return nil, &CodecError{Op: "AllThreads.count", Err: err}
	}
	out := make([]*Thread, 0, count)
	for i := int32(0); i < count; i++ {
		tid, err := dec.UnpackObjectID()
		if err != nil {
			return nil, &CodecError{Op: "AllThreads.threadID", Err: err}
		}
		out = append(out, s.threadByID(tid))
	}
	return out, nil
}

// Suspend issues VirtualMachine.Suspend, suspending every thread in the VM.
func (s *Session) Suspend() error {
	_, err := s.request(csVirtualMachine, lowByte(cmdVMSuspend), nil)
	return err
}

// Resume issues VirtualMachine.Resume, resuming every suspended thread.
func (s *Session) Resume() error {
	_, err := s.request(csVirtualMachine, lowByte(cmdVMResume), nil)
	return err
}

// Exit issues VirtualMachine.Exit, terminating the target VM with code.
func (s *Session) Exit(code int32) error {
	enc := wire.NewEncoder(s.sizes)
	enc.PackInt32(code)
	_, err := s.request(csVirtualMachine, lowByte(cmdVMExit), enc)
	return err
}

// loadClasses is the loader for the classList/classByJni group, run at
// most once concurrently by Classes/ClassesByJni via s.classesGroup.
func (s *Session) loadClasses() error {
	dec, err := s.request(csVirtualMachine, lowByte(cmdVMAllClasses), nil)
	if err != nil {
		return err
	}
	count, err := dec.UnpackU32()
	if err != nil {
		return &CodecError{Op: "AllClasses.count", Err: err}
	}

	list := make([]*Class, 0, count)
	byJni := make(map[string][]*Class)
	for i := uint32(0); i < count; i++ {
		fields, err := dec.Unpack("1t$$4")
		if err != nil {
			return &CodecError{Op: "AllClasses.entry", Err: err}
		}
		tag := fields[0].(byte)
		cid := fields[1].(wire.TypeID)
		jni := fields[2].(string)
		gen := fields[3].(string)
		flags := fields[4].(uint32)

		c := s.classByID(cid)
		c.setSignature(tag, jni, gen, flags)
		list = append(list, c)
		byJni[jni] = append(byJni[jni], c)
	}

	s.mu.Lock()
	s.classList = list
	s.classByJni = byJni
	s.mu.Unlock()
	observability.SetPoolSize("class", s.classes.Len())
	return nil
}

// Classes returns every class the VM reports, loading the class list on
// first access.
func (s *Session) Classes() ([]*Class, error) {
	if err := s.classesGroup.Load(s.loadClasses); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classList, nil
}

// ClassesByJni returns every class whose JNI signature equals jni,
// loading the class list on first access.
func (s *Session) ClassesByJni(jni string) ([]*Class, error) {
	if err := s.classesGroup.Load(s.loadClasses); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classByJni[jni], nil
}

// classByID returns the interned Class for cid, creating it if this is
// the first reference seen.
func (s *Session) classByID(cid wire.TypeID) *Class {
	return s.classes.FindOrInsert(cid, func() *Class {
		return newClass(s, cid)
	})
}

func (s *Session) methodByID(cid wire.TypeID, mid wire.MethodID) *Method {
	key := methodKey{class: cid, method: mid}
	return s.methods.FindOrInsert(key, func() *Method {
		return newMethod(s, cid, mid)
	})
}

func (s *Session) slotByIndex(cid wire.TypeID, mid wire.MethodID, index int32) *Slot {
	key := slotKey{class: cid, method: mid, index: index}
	return s.slots.FindOrInsert(key, func() *Slot {
		return newSlot(s, cid, mid, index)
	})
}

func (s *Session) locationByTriple(cid wire.TypeID, mid wire.MethodID, index uint64) *Location {
	key := locationKey{class: cid, method: mid, index: index}
	return s.locs.FindOrInsert(key, func() *Location {
		return newLocation(s, cid, mid, index)
	})
}

func (s *Session) threadByID(tid wire.ThreadID) *Thread {
	return s.threads.FindOrInsert(tid, func() *Thread {
		return newThread(s, tid)
	})
}

func (s *Session) frameByID(fid wire.FrameID) *Frame {
	return s.frames.FindOrInsert(fid, func() *Frame {
		return newFrame(s, fid)
	})
}

func (s *Session) refTypeByID(tag byte, tid wire.TypeID) *RefType {
	return s.reftyps.FindOrInsert(tid, func() *RefType {
		return newRefType(s, tag, tid)
	})
}

// objectByID returns the interned Object for oid, or VoidError if oid is
// the null sentinel (0).
func (s *Session) objectByID(oid wire.ObjectID) (*Object, error) {
	if oid == 0 {
		return nil, VoidError{}
	}
	return s.objects.FindOrInsert(oid, func() *Object {
		return newObject(s, oid)
	}), nil
}

// Shutdown closes the Transport and releases pending hooks, aggregating
// any failures into a ShutdownError. Calling Shutdown more than once is
// safe; later calls are no-ops returning nil.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	s.mu.Unlock()

	var errs []error
	if err := s.events.closeAll(); err != nil {
		errs = append(errs, err)
	}
	if err := s.tp.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return &ShutdownError{Errs: errs}
}
