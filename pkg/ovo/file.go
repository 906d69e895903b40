package ovo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// File is a decoded OVO file. Records keeps every chunk in file order,
// starting with the *Version record.
type File struct {
	Records []Record
}

// NewFile creates a file holding only the current version record.
func NewFile() *File {
	return &File{Records: []Record{&Version{Version: FormatVersion}}}
}

// Read decodes a complete OVO stream. Any framing or payload error aborts
// the decode; no partial file is returned.
func Read(r io.Reader) (*File, error) {
	cr := NewChunkReader(bufio.NewReader(r))
	f := &File{}

	for {
		c, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(f.Records) == 0 && c.Type != ChunkObject {
			return nil, invalid(ChunkObject, fmt.Sprintf("file starts with %s chunk", c.Type), nil)
		}

		rec, err := Decode(c)
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(f.Records), c.Offset, err)
		}
		f.Records = append(f.Records, rec)
	}

	if len(f.Records) == 0 {
		return nil, invalid(ChunkObject, "empty file", nil)
	}
	return f, nil
}

// ReadFile decodes an OVO file from disk.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OVO file: %w", err)
	}
	defer fh.Close()
	return Read(fh)
}

// Write encodes every record in order.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	cw := NewChunkWriter(bw)
	for i, rec := range f.Records {
		c, err := Encode(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if err := cw.WriteChunk(c.Type, c.Data); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Version returns the format version, or 0 if the file has no version record.
func (f *File) Version() uint32 {
	for _, rec := range f.Records {
		if v, ok := rec.(*Version); ok {
			return v.Version
		}
	}
	return 0
}

// Materials returns the MATERIAL records in file order.
func (f *File) Materials() []*Material {
	var out []*Material
	for _, rec := range f.Records {
		if m, ok := rec.(*Material); ok {
			out = append(out, m)
		}
	}
	return out
}

// Material returns the first material with the given name.
func (f *File) Material(name string) (*Material, bool) {
	for _, m := range f.Materials() {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// SceneRecords returns the NODE, MESH and LIGHT records in file order.
// This is the stream the hierarchy is rebuilt from.
func (f *File) SceneRecords() []SceneRecord {
	var out []SceneRecord
	for _, rec := range f.Records {
		if s, ok := rec.(SceneRecord); ok {
			out = append(out, s)
		}
	}
	return out
}

// Histogram counts records per chunk type.
func (f *File) Histogram() map[ChunkType]int {
	counts := make(map[ChunkType]int)
	for _, rec := range f.Records {
		counts[rec.ChunkType()]++
	}
	return counts
}
