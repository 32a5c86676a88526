package jdwp

import (
	"strings"
	"sync"

	"github.com/scottdunlop/godwp/lazyload"
	"github.com/scottdunlop/godwp/observability"
	"github.com/scottdunlop/godwp/wire"
)

// Class is keyed by its reference-type id. Its signature attributes
// (tag/jni/gen/flags) are loaded together with every other class by
// Session's VM-wide class enumeration; its method list is loaded
// separately, per class, on first access.
type Class struct {
	sess *Session
	cid  wire.TypeID

	mu    sync.Mutex
	tag   byte
	jni   string
	gen   string
	flags uint32

	methodsGroup lazyload.Group
	methodList   []*Method
	methodByJni  map[string][]*Method
	methodByName map[string][]*Method
}

func newClass(sess *Session, cid wire.TypeID) *Class {
	return &Class{sess: sess, cid: cid}
}

// ID returns the class's reference-type id.
func (c *Class) ID() wire.TypeID { return c.cid }

// setSignature is called by Session.loadClasses once per class as it
// walks the AllClasses reply; it is not a public loader because the
// signature group is loaded as a side effect of the Session-wide group,
// not independently per class.
func (c *Class) setSignature(tag byte, jni, gen string, flags uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tag = tag
	c.jni = jni
	c.gen = gen
	c.flags = flags
}

// Tag returns the class's type-signature tag byte.
func (c *Class) Tag() byte { return c.tag }

// Jni returns the class's JNI-style signature, e.g. "Ljava/lang/String;".
func (c *Class) Jni() string { return c.jni }

// Gen returns the class's generic signature, empty if none.
func (c *Class) Gen() string { return c.gen }

// Flags returns the class's access flags.
func (c *Class) Flags() uint32 { return c.flags }

// Name derives a dotted class name from Jni: "Ljava/lang/String;" becomes
// "java.lang.String"; non-object signatures such as "[I" pass through
// unchanged.
func (c *Class) Name() string {
	name := c.jni
	if strings.HasPrefix(name, "L") {
		name = name[1:]
	}
	if strings.HasSuffix(name, ";") {
		name = name[:len(name)-1]
	}
	return strings.ReplaceAll(name, "/", ".")
}

// loadMethods is the loader for the methodList/methodByJni/methodByName
// group, issuing ReferenceType.MethodsWithGeneric.
func (c *Class) loadMethods() error {
	enc := wire.NewEncoder(c.sess.IDSizes())
	enc.PackTypeID(c.cid)
	dec, err := c.sess.request(csReferenceType, lowByte(cmdRefTypeMethods), enc)
	if err != nil {
		return err
	}
	count, err := dec.UnpackU32()
	if err != nil {
		return &CodecError{Op: "Methods.count", Err: err}
	}

	list := make([]*Method, 0, count)
	byJni := make(map[string][]*Method)
	byName := make(map[string][]*Method)
	for i := uint32(0); i < count; i++ {
		fields, err := dec.Unpack("m$$$4")
		if err != nil {
			return &CodecError{Op: "Methods.entry", Err: err}
		}
		mid := fields[0].(wire.MethodID)
		name := fields[1].(string)
		jni := fields[2].(string)
		gen := fields[3].(string)
		flags := fields[4].(uint32)

		m := c.sess.methodByID(c.cid, mid)
		m.setIdentity(name, jni, gen, flags)
		list = append(list, m)
		byJni[jni] = append(byJni[jni], m)
		byName[name] = append(byName[name], m)
	}

	c.mu.Lock()
	c.methodList = list
	c.methodByJni = byJni
	c.methodByName = byName
	c.mu.Unlock()
	observability.SetPoolSize("method", c.sess.methods.Len())
	return nil
}

// Methods returns the class's full method list, loading it on first access.
func (c *Class) Methods() ([]*Method, error) {
	if err := c.methodsGroup.Load(c.loadMethods); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.methodList, nil
}

// MethodsFiltered returns the class's methods restricted to the given
// name and/or JNI signature; an empty string for either skips that
// filter. Supplying neither returns the full list, same as Methods.
func (c *Class) MethodsFiltered(name, jni string) ([]*Method, error) {
	if err := c.methodsGroup.Load(c.loadMethods); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case name != "" && jni != "":
		out := make([]*Method, 0)
		for _, m := range c.methodByName[name] {
			if m.Jni() == jni {
				out = append(out, m)
			}
		}
		return out, nil
	case name != "":
		return c.methodByName[name], nil
	case jni != "":
		return c.methodByJni[jni], nil
	default:
		return c.methodList, nil
	}
}

// HookEntries installs a method-entry breakpoint on every method declared
// by this class (JDWP modifier kind 4, ClassOnly) and returns the Hook
// that will receive (Thread, Location) pairs as the VM resumes execution.
func (c *Class) HookEntries() (*Hook, error) {
	enc := wire.NewEncoder(c.sess.IDSizes())
	enc.PackU8(eventKindMethodEntry).
		PackU8(suspendPolicyEventThread).
		PackU32(1).
		PackU8(modKindClassOnly).
		PackTypeID(c.cid)

	dec, err := c.sess.request(csEventRequest, lowByte(cmdEventRequestSet), enc)
	if err != nil {
		return nil, err
	}
	reqID, err := dec.UnpackU32()
	if err != nil {
		return nil, &CodecError{Op: "EventRequest.Set.requestID", Err: err}
	}
	return c.sess.events.register(reqID, eventKindMethodEntry)
}
