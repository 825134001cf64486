package multipart

import (
	"bytes"
	"unicode/utf8"
)

// Header is a single (name, value) pair emitted by HeaderParser. Names are
// always lower-case (§3); values preserve original casing and internal
// whitespace, with folded continuations joined by a single space (§9,
// resolved in SPEC_FULL.md §0).
type Header struct {
	Name  string
	Value string
}

// commitHeader converts the accumulated raw name/value bytes into a Header,
// lowercasing the name and validating both as UTF-8 (§4.2: "Name and value
// buffers are held as raw bytes and converted to text only on commit").
func commitHeader(rawName, rawValue []byte) (Header, error) {
	if !utf8.Valid(rawName) || !utf8.Valid(rawValue) {
		return Header{}, ErrInvalidHeaderText
	}

	return Header{
		Name:  string(bytes.ToLower(rawName)),
		Value: string(rawValue),
	}, nil
}
