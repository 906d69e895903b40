package ovo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	ovomath "github.com/Faultbox/ovokit/pkg/math"
)

// Sentinel strings used by the format.
const (
	// NoneName marks an absent texture or target reference.
	NoneName = "[none]"
	// RootName names the container record emitted above the real roots.
	RootName = "[root]"
)

// reader decodes primitives from one chunk payload. base is the absolute
// stream offset of the payload so errors can point into the file.
type reader struct {
	r    *bytes.Reader
	base int64
}

func newReader(data []byte, base int64) *reader {
	return &reader{r: bytes.NewReader(data), base: base}
}

// offset returns the absolute offset of the next unread byte.
func (r *reader) offset() int64 {
	return r.base + r.r.Size() - int64(r.r.Len())
}

// remaining returns the number of unread payload bytes.
func (r *reader) remaining() int {
	return r.r.Len()
}

func (r *reader) fail(start int64, what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &MalformedPrimitiveError{Offset: start, What: what, Err: err}
}

func (r *reader) read(what string, v any) error {
	start := r.offset()
	if err := binary.Read(r.r, binary.LittleEndian, v); err != nil {
		return r.fail(start, what, err)
	}
	return nil
}

func (r *reader) u8(what string) (uint8, error) {
	var v uint8
	err := r.read(what, &v)
	return v, err
}

func (r *reader) bool(what string) (bool, error) {
	v, err := r.u8(what)
	return v != 0, err
}

func (r *reader) u32(what string) (uint32, error) {
	var v uint32
	err := r.read(what, &v)
	return v, err
}

func (r *reader) u64(what string) (uint64, error) {
	var v uint64
	err := r.read(what, &v)
	return v, err
}

func (r *reader) f32(what string) (float32, error) {
	var v float32
	err := r.read(what, &v)
	return v, err
}

func (r *reader) vec3(what string) (ovomath.Vec3, error) {
	var v [3]float32
	if err := r.read(what, &v); err != nil {
		return ovomath.Vec3{}, err
	}
	return ovomath.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}

// mat4 reads 16 floats. The file stores the transform column by column,
// which is exactly the storage order of ovomath.Mat4.
func (r *reader) mat4(what string) (ovomath.Mat4, error) {
	var m ovomath.Mat4
	err := r.read(what, (*[16]float32)(&m))
	return m, err
}

// str reads a null-terminated UTF-8 string.
func (r *reader) str(what string) (string, error) {
	start := r.offset()
	var buf []byte
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return "", r.fail(start, what, err)
		}
		if b == 0 {
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

// ref reads a string where NoneName means absent.
func (r *reader) ref(what string) (string, error) {
	s, err := r.str(what)
	if s == NoneName {
		s = ""
	}
	return s, err
}

// count reads a u32 element count and checks that count*elemSize bytes
// can still be present in the payload.
func (r *reader) count(what string, elemSize int) (int, error) {
	start := r.offset()
	n, err := r.u32(what)
	if err != nil {
		return 0, err
	}
	if uint64(n)*uint64(elemSize) > uint64(r.remaining()) {
		return 0, &MalformedPrimitiveError{Offset: start, What: what, Err: io.ErrUnexpectedEOF}
	}
	return int(n), nil
}

// writer encodes primitives into a chunk payload.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) u32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *writer) u64(v uint64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) vec3(v ovomath.Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *writer) mat4(m ovomath.Mat4) {
	for _, f := range m {
		w.f32(f)
	}
}

func (w *writer) str(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// ref writes s, or NoneName when s is empty.
func (w *writer) ref(s string) {
	if s == "" {
		s = NoneName
	}
	w.str(s)
}
