// Package method implements the trivial Method enum of §4.6, grounded on
// src/snowdrop/methods.go's HTTPMethod/IsMethodValid.
package method

import (
	"errors"
	"strings"
)

// ErrInvalidMethod is returned by Parse for anything outside the nine
// standard verbs. §4.6/§9: the source rejects non-standard tokens rather
// than returning an Other(text) variant, and this implementation follows
// that source-fidelity option.
var ErrInvalidMethod = errors.New("method: not one of the nine standard verbs")

// Method is one of the nine standard HTTP verbs named in §4.6.
type Method uint8

const (
	Connect Method = iota + 1
	Delete
	Get
	Head
	Options
	Patch
	Post
	Put
	Trace
)

var names = map[Method]string{
	Connect: "connect",
	Delete:  "delete",
	Get:     "get",
	Head:    "head",
	Options: "options",
	Patch:   "patch",
	Post:    "post",
	Put:     "put",
	Trace:   "trace",
}

var byName = func() map[string]Method {
	m := make(map[string]Method, len(names))
	for method, name := range names {
		m[name] = method
	}
	return m
}()

// Parse recognizes the nine standard verbs case-insensitively (§4.6:
// "parse_method is case-insensitive over the nine"). Anything else fails.
func Parse(raw string) (Method, error) {
	m, ok := byName[strings.ToLower(raw)]
	if !ok {
		return 0, ErrInvalidMethod
	}

	return m, nil
}

// String yields the lower-case verb name.
func (m Method) String() string {
	return names[m]
}
