// Package integrity produces the canonical serialization of a shared folder
// and the keyed MAC over it. Server and client both use it so the bytes they
// sign are identical.
package integrity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Folder is the signed content of a share: a display name and an ordered
// list of opaque world records.
type Folder struct {
	Name   string            `json:"name"`
	Worlds []json.RawMessage `json:"worlds"`
}

// Canonicalize serializes name and worlds as
//
//	{"name":<name>,"worlds":[<w0>,<w1>,...]}
//
// Each world is compacted with key order preserved. The name escapes only
// quotes, backslashes and control characters (HTML characters, U+2028 and
// U+2029 stay raw) and there is no trailing newline, so the output equals what
// JSON.stringify or serde_json emit for the same content.
func Canonicalize(name string, worlds []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"name":`)

	writeString(&buf, name)

	buf.WriteString(`,"worlds":[`)
	for i, w := range worlds {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := json.Compact(&buf, w); err != nil {
			return nil, fmt.Errorf("world %d: %w", i, err)
		}
	}
	buf.WriteString(`]}`)

	return buf.Bytes(), nil
}

// CanonicalizeFolder is Canonicalize for a Folder value.
func CanonicalizeFolder(f Folder) ([]byte, error) {
	return Canonicalize(f.Name, f.Worlds)
}

const hexDigits = "0123456789abcdef"

// writeString quotes s the way JSON.stringify and serde_json do: only '"',
// '\\' and control characters are escaped, everything else (including
// U+2028 and U+2029) is written as raw UTF-8. Invalid UTF-8 becomes U+FFFD.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[r>>4])
				buf.WriteByte(hexDigits[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
