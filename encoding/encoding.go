// Package encoding turns raw file bytes into the character stream the
// validator scans. It wraps golang.org/x/text/encoding, partly because
// package names such as "unicode" clash with the stdlib and it is easier
// to hide them here.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	enc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode tries, in order: BOM-aware UTF-8, plain UTF-8, Latin-1,
// Windows-1252, and finally UTF-8 with lossy replacement. It returns the
// decoded text and the name of the strategy that produced it. The final
// fallback always succeeds, so there is no error to return.
func Decode(b []byte) (string, string) {
	if bytes.HasPrefix(b, utf8BOM) {
		if rest := b[len(utf8BOM):]; utf8.Valid(rest) {
			return string(rest), "utf-8-sig"
		}
	}

	if utf8.Valid(b) {
		return string(b), "utf-8"
	}

	if s, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(s), "latin-1"
	}

	if s, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil {
		return string(s), "windows-1252"
	}

	// the x/text UTF-8 decoder substitutes U+FFFD for anything invalid
	s, _ := unicode.UTF8.NewDecoder().Bytes(b)
	return string(s), "utf-8 (lossy)"
}

// DecodeWith decodes b with the named encoding instead of the fallback
// chain, for callers that already know what they are dealing with.
func DecodeWith(b []byte, name string) (string, error) {
	e := Load(name)
	if e == nil {
		return "", ErrUnsupportedEncoding{Name: name}
	}
	s, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

type ErrUnsupportedEncoding struct {
	Name string
}

func (e ErrUnsupportedEncoding) Error() string {
	return "encoding '" + e.Name + "' not supported"
}

// Load maps an encoding name to its x/text decoder, nil when unknown.
func Load(name string) enc.Encoding {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return unicode.UTF8
	case "utf-16le", "utf16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be", "utf16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1
	case "iso-8859-2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "koi8r":
		return charmap.KOI8R
	case "windows-1250", "cp1250":
		return charmap.Windows1250
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "windows-874":
		return charmap.Windows874
	}
	return nil
}
