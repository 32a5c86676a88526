package jdwp

import (
	"sync"

	"github.com/scottdunlop/godwp/lazyload"
	"github.com/scottdunlop/godwp/wire"
)

// RefType is keyed by type-id and carries its own Signature lazy group,
// independent of Class's. A RefType surfaces from ObjectReference.ReferenceType
// for objects whose declaring Class was never separately interned via
// Session.Classes, so it cannot assume the signature Class.setSignature
// would otherwise have filled in.
type RefType struct {
	sess *Session
	tag  byte
	tid  wire.TypeID

	sigGroup lazyload.Group
	mu       sync.Mutex
	jni      string
	gen      string
}

func newRefType(sess *Session, tag byte, tid wire.TypeID) *RefType {
	return &RefType{sess: sess, tag: tag, tid: tid}
}

// ID returns the reference type's type-id.
func (r *RefType) ID() wire.TypeID { return r.tid }

// Tag returns the type tag reported by the request that produced this
// RefType (class, interface, or array).
func (r *RefType) Tag() byte { return r.tag }

func (r *RefType) loadSignature() error {
	enc := wire.NewEncoder(r.sess.IDSizes())
	enc.PackTypeID(r.tid)
	dec, err := r.sess.request(csReferenceType, lowByte(cmdRefTypeSignatureWithGeneric), enc)
	if err != nil {
		return err
	}
	jni, err := dec.UnpackString()
	if err != nil {
		return &CodecError{Op: "ReferenceType.SignatureWithGeneric.jni", Err: err}
	}
	gen, err := dec.UnpackString()
	if err != nil {
		return &CodecError{Op: "ReferenceType.SignatureWithGeneric.gen", Err: err}
	}
	r.mu.Lock()
	r.jni, r.gen = jni, gen
	r.mu.Unlock()
	return nil
}

// Jni returns the JNI-style type signature, loading it on first access.
func (r *RefType) Jni() (string, error) {
	if err := r.sigGroup.Load(r.loadSignature); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jni, nil
}

// Gen returns the generic type signature, empty if the type is not
// generic, loading it on first access.
func (r *RefType) Gen() (string, error) {
	if err := r.sigGroup.Load(r.loadSignature); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen, nil
}
