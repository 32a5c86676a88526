package jdwp

import (
	"sync"

	"github.com/scottdunlop/godwp/lazyload"
	"github.com/scottdunlop/godwp/wire"
)

// Object is keyed by object-id; oid 0 never reaches here, Session.objectByID
// turns it into a VoidError before interning would occur. Its reference
// type is loaded lazily and independently of any Class the VM may also
// report for the same underlying type.
type Object struct {
	sess *Session
	oid  wire.ObjectID

	reftypeGroup lazyload.Group
	mu           sync.Mutex
	reftype      *RefType
}

func newObject(sess *Session, oid wire.ObjectID) *Object {
	return &Object{sess: sess, oid: oid}
}

// ID returns the object's object-id.
func (o *Object) ID() wire.ObjectID { return o.oid }

func (o *Object) loadRefType() error {
	enc := wire.NewEncoder(o.sess.IDSizes())
	enc.PackObjectID(o.oid)
	dec, err := o.sess.request(csObjectReference, lowByte(cmdObjectReferenceType), enc)
	if err != nil {
		return err
	}
	tag, err := dec.UnpackU8()
	if err != nil {
		return &CodecError{Op: "ObjectReference.ReferenceType.tag", Err: err}
	}
	tid, err := dec.UnpackTypeID()
	if err != nil {
		return &CodecError{Op: "ObjectReference.ReferenceType.typeID", Err: err}
	}
	o.mu.Lock()
	o.reftype = o.sess.refTypeByID(tag, tid)
	o.mu.Unlock()
	return nil
}

// RefType returns the object's reference type, loading it on first access.
func (o *Object) RefType() (*RefType, error) {
	if err := o.reftypeGroup.Load(o.loadRefType); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reftype, nil
}

// Jni delegates to the object's reference type signature.
func (o *Object) Jni() (string, error) {
	rt, err := o.RefType()
	if err != nil {
		return "", err
	}
	return rt.Jni()
}

// Gen delegates to the object's reference type generic signature.
func (o *Object) Gen() (string, error) {
	rt, err := o.RefType()
	if err != nil {
		return "", err
	}
	return rt.Gen()
}

// String wraps an Object known to be a java.lang.String instance and
// adds the one operation specific to strings: fetching their UTF-8 value.
type String struct {
	*Object
}

// NewString wraps obj as a String view. Callers are expected to have
// identified obj as a string instance themselves (e.g. via a decoded
// value's tag of 's'); this wrapper does not re-verify the reference type.
func NewString(obj *Object) *String { return &String{Object: obj} }

// Data issues StringReference.Value and returns the string's UTF-8
// content.
func (s *String) Data() (string, error) {
	enc := wire.NewEncoder(s.sess.IDSizes())
	enc.PackObjectID(s.oid)
	dec, err := s.sess.request(csStringReference, lowByte(cmdStringValue), enc)
	if err != nil {
		return "", err
	}
	value, err := dec.UnpackString()
	if err != nil {
		return "", &CodecError{Op: "StringReference.Value", Err: err}
	}
	return value, nil
}
