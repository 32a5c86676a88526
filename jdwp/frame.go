package jdwp

import (
	"fmt"
	"sync"

	"github.com/scottdunlop/godwp/wire"
)

// Frame is keyed by frame-id. Unlike most entities, its loc and tid
// attributes are not behind a lazy group: they are set directly by every
// Thread.Frames call that reports this frame, since a frame only exists
// in the context of a stack snapshot.
type Frame struct {
	sess *Session
	fid  wire.FrameID

	mu  sync.Mutex
	loc *Location
	tid wire.ThreadID
}

func newFrame(sess *Session, fid wire.FrameID) *Frame {
	return &Frame{sess: sess, fid: fid}
}

// ID returns the frame's frame-id.
func (f *Frame) ID() wire.FrameID { return f.fid }

func (f *Frame) setLocation(loc *Location, tid wire.ThreadID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loc = loc
	f.tid = tid
}

// Location returns the location this frame was captured at.
func (f *Frame) Location() *Location {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loc
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame %d, at %s", f.fid, f.Location())
}

// Values issues StackFrame.GetValues for every slot in scope at this
// frame's location, keyed by slot name. A native frame's location has no
// slots, so Values short-circuits to an empty map without issuing any
// request, matching the original's native-frame guard.
func (f *Frame) Values() (map[string]any, error) {
	loc := f.Location()
	if loc == nil || loc.Native() {
		return map[string]any{}, nil
	}
	slots, err := loc.Slots()
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return map[string]any{}, nil
	}

	f.mu.Lock()
	tid := f.tid
	f.mu.Unlock()

	enc := wire.NewEncoder(f.sess.IDSizes())
	enc.PackObjectID(tid).PackFrameID(f.fid).PackU32(uint32(len(slots)))
	for _, s := range slots {
		tag, err := s.Tag()
		if err != nil {
			return nil, err
		}
		enc.PackU32(uint32(s.Index())).PackU8(tag)
	}

	dec, err := f.sess.request(csStackFrame, lowByte(cmdStackFrameGetValues), enc)
	if err != nil {
		return nil, err
	}
	count, err := dec.UnpackU32()
	if err != nil {
		return nil, &CodecError{Op: "StackFrame.GetValues.count", Err: err}
	}

	out := make(map[string]any, count)
	for i := uint32(0); i < count && i < uint32(len(slots)); i++ {
		v, err := decodeValue(f.sess, dec)
		if err != nil {
			return nil, err
		}
		name, err := slots[i].Name()
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
