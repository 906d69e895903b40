// Package textures locates and checks the image files referenced by
// material texture slots.
package textures

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp" // BMP decoder registration
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for files that are not a known image format.
var ErrUnsupported = errors.New("unsupported texture format")

// ddsHeaderSize covers the magic and the fields up to the width.
const ddsHeaderSize = 20

// Info describes a texture file.
type Info struct {
	Format string
	Width  int
	Height int
}

// Probe reads just enough of the file at path to identify it.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return Info{}, fmt.Errorf("%w: %s is too short", ErrUnsupported, path)
	}
	if bytes.Equal(magic[:], []byte("DDS ")) {
		return probeDDS(f, path)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Info{}, err
	}
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrUnsupported, path, err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// probeDDS reads the DDS header size, height and width after the magic.
func probeDDS(r io.Reader, path string) (Info, error) {
	var hdr [ddsHeaderSize - 4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Info{}, fmt.Errorf("%w: %s: truncated DDS header", ErrUnsupported, path)
	}
	if size := binary.LittleEndian.Uint32(hdr[0:4]); size != 124 {
		return Info{}, fmt.Errorf("%w: %s: DDS header size %d", ErrUnsupported, path, size)
	}
	return Info{
		Format: "dds",
		Height: int(binary.LittleEndian.Uint32(hdr[8:12])),
		Width:  int(binary.LittleEndian.Uint32(hdr[12:16])),
	}, nil
}

// DirResolver resolves texture references against a directory and stores
// only the file name, which is how OVO consumers look textures up.
type DirResolver struct {
	Dir string
	Log *zap.Logger
}

// ResolveTexture checks that ref names a readable image.
func (r *DirResolver) ResolveTexture(ctx context.Context, material, slot, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.Dir, ref)
	}
	info, err := Probe(path)
	if err != nil {
		return "", err
	}

	if r.Log != nil {
		r.Log.Debug("texture",
			zap.String("material", material),
			zap.String("slot", slot),
			zap.String("path", path),
			zap.String("format", info.Format),
			zap.Int("width", info.Width),
			zap.Int("height", info.Height))
	}
	return filepath.Base(ref), nil
}
