// Package encoding converts object and texture names written by legacy
// tools in a single-byte or multi-byte Windows code page to UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for unsupported names.
var ErrUnknownEncoding = errors.New("unknown name encoding")

// DefaultLegacy is the code page assumed for names that are not UTF-8.
const DefaultLegacy = "windows-1252"

var encodings = map[string]encoding.Encoding{
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"windows-1251": charmap.Windows1251,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
}

// Lookup returns the encoding for a configuration name. "utf-8" returns
// nil, which makes ToUTF8 only repair invalid bytes.
func Lookup(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf-8" || n == "utf8" {
		return nil, nil
	}
	if enc, ok := encodings[n]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// ToUTF8 returns s unchanged when it is valid UTF-8 and decodes it from
// legacy otherwise. Bytes that still cannot be decoded become U+FFFD.
func ToUTF8(s string, legacy encoding.Encoding) string {
	if utf8.ValidString(s) {
		return s
	}
	if legacy != nil {
		if out, _, err := transform.String(legacy.NewDecoder(), s); err == nil && utf8.ValidString(out) {
			return out
		}
	}
	return strings.ToValidUTF8(s, "�")
}

// FromUTF8 encodes s into legacy for tools that cannot read UTF-8 names.
// Characters the code page lacks make it an error.
func FromUTF8(s string, legacy encoding.Encoding) (string, error) {
	if legacy == nil {
		return s, nil
	}
	out, _, err := transform.String(legacy.NewEncoder(), s)
	if err != nil {
		return "", fmt.Errorf("encoding %q: %w", s, err)
	}
	return out, nil
}
