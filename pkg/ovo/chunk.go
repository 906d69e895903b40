package ovo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ChunkType identifies the payload kind of a chunk.
type ChunkType uint32

// Chunk types known to the format. Only Object, Node, Material, Light and
// Mesh have typed codecs; all others are carried as opaque records.
const (
	ChunkObject ChunkType = iota
	ChunkNode
	ChunkObject2D
	ChunkObject3D
	ChunkList
	ChunkBuffer
	ChunkShader
	ChunkTexture
	ChunkFilter
	ChunkMaterial
	ChunkFBO
	ChunkQuad
	ChunkBox
	ChunkSkybox
	ChunkFont
	ChunkCamera
	ChunkLight
	ChunkBone
	ChunkMesh
	ChunkSkinned
	ChunkInstanced
	ChunkPipeline
	ChunkEmitter
	ChunkAnim
	ChunkPhysics
	ChunkLast
)

var chunkNames = [...]string{
	"OBJECT", "NODE", "OBJECT2D", "OBJECT3D", "LIST", "BUFFER", "SHADER",
	"TEXTURE", "FILTER", "MATERIAL", "FBO", "QUAD", "BOX", "SKYBOX", "FONT",
	"CAMERA", "LIGHT", "BONE", "MESH", "SKINNED", "INSTANCED", "PIPELINE",
	"EMITTER", "ANIM", "PHYSICS", "LAST",
}

// String returns the chunk type name, e.g. "MESH".
func (t ChunkType) String() string {
	if int(t) < len(chunkNames) {
		return chunkNames[t]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(t))
}

// ChunkHeaderSize is the size of the (type, size) header.
const ChunkHeaderSize = 8

// Chunk is one framed record: a type, and exactly len(Data) payload bytes.
type Chunk struct {
	Type   ChunkType
	Data   []byte
	Offset int64 // stream offset of the header; set by ChunkReader
}

// ChunkReader reads chunks sequentially from a stream.
type ChunkReader struct {
	r      io.Reader
	offset int64
}

// NewChunkReader creates a reader positioned at the start of a chunk.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{r: r}
}

// Offset returns the number of bytes consumed so far.
func (cr *ChunkReader) Offset() int64 {
	return cr.offset
}

// Next reads the next chunk. It returns io.EOF at a clean end of stream,
// ErrTruncatedHeader when 1-7 header bytes remain and ErrTruncatedPayload
// when the payload is shorter than declared. A successful call always
// consumes exactly the header and the declared payload size, so payload
// parsing never affects where the next chunk starts.
func (cr *ChunkReader) Next() (Chunk, error) {
	start := cr.offset

	var hdr [ChunkHeaderSize]byte
	n, err := io.ReadFull(cr.r, hdr[:])
	cr.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Chunk{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Chunk{}, fmt.Errorf("%w: %d of %d bytes at offset %d", ErrTruncatedHeader, n, ChunkHeaderSize, start)
		}
		return Chunk{}, fmt.Errorf("reading chunk header at offset %d: %w", start, err)
	}

	typ := ChunkType(binary.LittleEndian.Uint32(hdr[0:4]))
	size := binary.LittleEndian.Uint32(hdr[4:8])

	// LimitReader keeps a bogus size from allocating gigabytes up front.
	data, err := io.ReadAll(io.LimitReader(cr.r, int64(size)))
	cr.offset += int64(len(data))
	if err != nil {
		return Chunk{}, fmt.Errorf("reading %s payload at offset %d: %w", typ, start, err)
	}
	if uint32(len(data)) < size {
		return Chunk{}, fmt.Errorf("%w: %s chunk at offset %d declares %d bytes, got %d",
			ErrTruncatedPayload, typ, start, size, len(data))
	}

	return Chunk{Type: typ, Data: data, Offset: start}, nil
}

// ChunkWriter writes framed chunks.
type ChunkWriter struct {
	w       io.Writer
	written int64
}

// NewChunkWriter creates a chunk writer.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{w: w}
}

// Written returns the number of bytes written so far.
func (cw *ChunkWriter) Written() int64 {
	return cw.written
}

// WriteChunk writes the 8-byte header followed by the payload verbatim.
func (cw *ChunkWriter) WriteChunk(typ ChunkType, payload []byte) error {
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return fmt.Errorf("%s payload too large: %d bytes", typ, len(payload))
	}

	var hdr [ChunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(typ))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))

	n, err := cw.w.Write(hdr[:])
	cw.written += int64(n)
	if err != nil {
		return fmt.Errorf("writing %s header: %w", typ, err)
	}
	n, err = cw.w.Write(payload)
	cw.written += int64(n)
	if err != nil {
		return fmt.Errorf("writing %s payload: %w", typ, err)
	}
	return nil
}
