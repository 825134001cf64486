// Package disposition parses a Content-Disposition header value and its
// RFC 2045 parameters (§4.5). Grounded on the parameter/value-accessor
// shape of zostay-go-email's ParameterizedValue/Disposition interfaces,
// with the quoted/unquoted scanning itself worked out from RFC 2045's own
// grammar the way mjl--mox's part.go walks it.
package disposition

import (
	"errors"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	// ErrUnterminatedQuote marks a quoted parameter value with no closing
	// quote before end of input.
	ErrUnterminatedQuote = errors.New("disposition: unterminated quoted value")

	// ErrMissingEquals marks a parameter name with no '=' before its
	// value.
	ErrMissingEquals = errors.New("disposition: parameter missing '='")

	// ErrInvalidToken marks a parameter name that failed StrictTokens
	// validation.
	ErrInvalidToken = errors.New("disposition: parameter name is not a valid token")
)

// Parameter is a single (name, value) pair from a Content-Disposition
// header, in source order.
type Parameter struct {
	Name  string
	Value string
}

// ContentDisposition is the parsed form of a Content-Disposition header
// value: a disposition type plus its parameters (§3).
type ContentDisposition struct {
	Type       string
	Parameters []Parameter
}

// Get returns the value of the named parameter (case-insensitive) and
// whether it was present.
func (d ContentDisposition) Get(name string) (string, bool) {
	for _, p := range d.Parameters {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}

	return "", false
}

// Options configures optional strictness beyond §4.5's base grammar.
type Options struct {
	// StrictTokens rejects parameter names containing characters outside
	// RFC 7230's token grammar instead of accepting anything up to '='.
	StrictTokens bool
}

// Parse implements §4.5: type, then a run of "; name=value" parameters,
// operating on runes (not bytes) so multi-byte characters inside values
// survive intact.
func Parse(header string) (ContentDisposition, error) {
	return ParseWithOptions(header, Options{})
}

// ParseWithOptions is Parse with StrictTokens available.
func ParseWithOptions(header string, opts Options) (ContentDisposition, error) {
	runes := []rune(header)
	pos := 0

	typ, pos := scanType(runes, pos)

	disp := ContentDisposition{Type: typ}

	for {
		pos = skipRunOf(runes, pos, ';', ' ', '\t')

		if pos >= len(runes) {
			break
		}

		name, valuePos, ok := scanParamName(runes, pos)
		if !ok {
			return ContentDisposition{}, ErrMissingEquals
		}

		if opts.StrictTokens && !isStrictToken(name) {
			return ContentDisposition{}, ErrInvalidToken
		}

		value, nextPos, err := scanParamValue(runes, valuePos)
		if err != nil {
			return ContentDisposition{}, err
		}

		disp.Parameters = append(disp.Parameters, Parameter{Name: name, Value: value})
		pos = nextPos
	}

	return disp, nil
}

// scanType implements §4.5 stage 1: accumulate characters, lowercased,
// until end of string, space, HTAB, or ';'.
func scanType(runes []rune, pos int) (string, int) {
	start := pos

	for pos < len(runes) {
		r := runes[pos]
		if r == ' ' || r == '\t' || r == ';' {
			break
		}
		pos++
	}

	return strings.ToLower(string(runes[start:pos])), pos
}

func skipRunOf(runes []rune, pos int, set ...rune) int {
	for pos < len(runes) && containsRune(set, runes[pos]) {
		pos++
	}

	return pos
}

func containsRune(set []rune, r rune) bool {
	for _, s := range set {
		if s == r {
			return true
		}
	}

	return false
}

// scanParamName reads a lowercased parameter name up to '='. ok is false
// if '=' is never found before end of input or before the next ';'.
func scanParamName(runes []rune, pos int) (name string, valuePos int, ok bool) {
	start := pos

	for pos < len(runes) && runes[pos] != '=' {
		if runes[pos] == ';' {
			return "", 0, false
		}
		pos++
	}

	if pos >= len(runes) {
		return "", 0, false
	}

	return strings.ToLower(string(runes[start:pos])), pos + 1, true
}

// scanParamValue implements §4.5's value cases: quoted (backslash-escaped,
// unterminated is fatal) or unquoted (runs until ';', SP, HTAB, or EOF).
func scanParamValue(runes []rune, pos int) (string, int, error) {
	if pos < len(runes) && runes[pos] == '"' {
		return scanQuotedValue(runes, pos+1)
	}

	start := pos

	for pos < len(runes) {
		r := runes[pos]
		if r == ';' || r == ' ' || r == '\t' {
			break
		}
		pos++
	}

	return string(runes[start:pos]), pos, nil
}

func scanQuotedValue(runes []rune, pos int) (string, int, error) {
	var value []rune

	for pos < len(runes) {
		r := runes[pos]

		switch r {
		case '\\':
			if pos+1 >= len(runes) {
				return "", 0, ErrUnterminatedQuote
			}
			value = append(value, runes[pos+1])
			pos += 2
		case '"':
			return string(value), pos + 1, nil
		default:
			value = append(value, r)
			pos++
		}
	}

	return "", 0, ErrUnterminatedQuote
}

// isStrictToken reports whether name is a valid RFC 7230 token: every
// character must be a tchar, per golang.org/x/net/http/httpguts.
func isStrictToken(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}

	return true
}

// Serialize renders a ContentDisposition back into header-value form,
// quoting any parameter value that contains a token-breaking character.
// Used by the canonical-form round-trip property in §8.
func Serialize(d ContentDisposition) string {
	var b strings.Builder

	b.WriteString(d.Type)

	for _, p := range d.Parameters {
		b.WriteString("; ")
		b.WriteString(p.Name)
		b.WriteByte('=')

		if needsQuoting(p.Value) {
			b.WriteByte('"')
			for _, r := range p.Value {
				if r == '"' || r == '\\' {
					b.WriteByte('\\')
				}
				b.WriteRune(r)
			}
			b.WriteByte('"')
		} else {
			b.WriteString(p.Value)
		}
	}

	return b.String()
}

func needsQuoting(value string) bool {
	if value == "" {
		return true
	}

	for _, r := range value {
		if r == ';' || r == ' ' || r == '\t' || r == '"' {
			return true
		}
	}

	return false
}
