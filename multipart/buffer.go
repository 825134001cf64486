package multipart

// Byte-buffer primitives (§4.1). The teacher never wraps []byte in its own
// type - it compares and subslices raw byte slices directly
// (httpparser/httpparser.go's EqualFold) - so this file stays a handful of
// free functions rather than an abstraction nothing else in the corpus uses.

const (
	cr   = '\r'
	lf   = '\n'
	dash = '-'
	sp   = ' '
	ht   = '\t'
	clnl = ':'
)

// hasPrefixAt reports whether data[pos:] begins with prefix, without
// panicking when data is shorter than pos+len(prefix).
func hasPrefixAt(data []byte, pos int, prefix []byte) bool {
	if pos < 0 || pos+len(prefix) > len(data) {
		return false
	}

	for i, b := range prefix {
		if data[pos+i] != b {
			return false
		}
	}

	return true
}

// EqualFoldASCII reports whether data equals sample, case-insensitively.
// Grounded on httpparser/httpparser.go's EqualFold. Exported so callers
// like cmd/multipartserver's header lookup can compare a caller-supplied
// name against a parsed Header.Name without assuming its case.
func EqualFoldASCII(sample, data []byte) bool {
	if len(sample) != len(data) {
		return false
	}

	for i, want := range sample {
		got := data[i]
		if 'A' <= want && want <= 'Z' {
			want |= 0x20
		}
		if 'A' <= got && got <= 'Z' {
			got |= 0x20
		}
		if want != got {
			return false
		}
	}

	return true
}

func isWSP(b byte) bool {
	return b == sp || b == ht
}
