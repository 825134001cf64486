package multipart

import (
	"bytes"
	"testing"
)

func feedHeaders(t *testing.T, p *HeaderParser, data []byte, chunkSize int) (HeadersResult, error) {
	t.Helper()

	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			end = len(data)
		}

		result, err := p.Feed(data[i:end])
		if err != nil {
			return result, err
		}

		if !result.NeedMore {
			// Remaining only covers bytes fed so far; append the part of
			// data not yet fed so it is comparable to a single-shot parse.
			result.Remaining = append(append([]byte(nil), result.Remaining...), data[end:]...)
			return result, nil
		}
	}

	return HeadersResult{}, nil
}

func TestSinglePartHeadersNoPreamble(t *testing.T) {
	input := []byte("--X\r\nA: 1\r\n\r\nbody\r\n--X--")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Name != "a" || result.Headers[0].Value != "1" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
	if !bytes.Equal(result.Remaining, []byte("body\r\n--X--")) {
		t.Fatalf("unexpected remaining: %q", result.Remaining)
	}
}

func TestTwoPartsWithPreamble(t *testing.T) {
	input := "preamble\r\n--X\r\nA: 1\r\n\r\nfirst\r\n--X\r\nB: 2\r\n\r\nsecond\r\n--X--epilogue"

	hp := NewHeaderParser("X", Settings{})
	result, err := feedHeaders(t, hp, []byte(input), len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Name != "a" || result.Headers[0].Value != "1" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}

	bp := NewBodyParser("X", Settings{})
	bodyResult, err := bp.Feed(result.Remaining)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if bodyResult.Done || string(bodyResult.Chunk) != "first" {
		t.Fatalf("unexpected body result: %+v", bodyResult)
	}

	hp.Reset()
	result, err = feedHeaders(t, hp, bodyResult.Remaining, len(bodyResult.Remaining)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Name != "b" || result.Headers[0].Value != "2" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}

	bp2 := NewBodyParser("X", Settings{})
	bodyResult2, err := bp2.Feed(result.Remaining)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !bodyResult2.Done || string(bodyResult2.Chunk) != "second" || string(bodyResult2.Remaining) != "epilogue" {
		t.Fatalf("unexpected final body result: %+v", bodyResult2)
	}
}

// testChunkedPreambleHeaderParse pins the case where a byte stream splits
// inside the preamble's "\r\n--boundary" delimiter itself: a resumed Feed
// call must keep requiring the full CRLF-prefixed boundary, not silently
// re-derive "start of input, bare boundary allowed" from position 0 of the
// resumed buffer.
func testChunkedPreambleHeaderParse(t *testing.T, chunkSize int) {
	input := []byte("preamble\r\n--X\r\nA: 1\r\n\r\nbody\r\n--X--")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, chunkSize)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Name != "a" || result.Headers[0].Value != "1" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
	if !bytes.Equal(result.Remaining, []byte("body\r\n--X--")) {
		t.Fatalf("unexpected remaining: %q", result.Remaining)
	}
}

func TestChunkedPreambleHeaderParse1Byte(t *testing.T) {
	testChunkedPreambleHeaderParse(t, 1)
}

func TestChunkedPreambleHeaderParse2Bytes(t *testing.T) {
	testChunkedPreambleHeaderParse(t, 2)
}

func TestChunkedPreambleHeaderParse3Bytes(t *testing.T) {
	testChunkedPreambleHeaderParse(t, 3)
}

func testChunkedHeaderParse(t *testing.T, chunkSize int) {
	input := []byte("--X\r\nA: 1\r\n\r\nbody\r\n--X--")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, chunkSize)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Name != "a" || result.Headers[0].Value != "1" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
	if !bytes.Equal(result.Remaining, []byte("body\r\n--X--")) {
		t.Fatalf("unexpected remaining: %q", result.Remaining)
	}
}

func TestChunkedHeaderParse1Byte(t *testing.T) {
	testChunkedHeaderParse(t, 1)
}

func TestChunkedHeaderParse2Bytes(t *testing.T) {
	testChunkedHeaderParse(t, 2)
}

func TestChunkedHeaderParse5Bytes(t *testing.T) {
	testChunkedHeaderParse(t, 5)
}

// TestLoneCRInValueIsLiteral pins §4.2: only the literal two-byte CR LF
// sequence terminates or folds a value line. A CR not immediately followed
// by LF is ordinary value text.
func TestLoneCRInValueIsLiteral(t *testing.T) {
	input := []byte("--X\r\nA: a\rb\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Value != "a\rb" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
}

// TestLoneLFInValueIsLiteral is the LF counterpart: a bare LF not preceded
// by CR is also ordinary value text, not a line terminator.
func TestLoneLFInValueIsLiteral(t *testing.T) {
	input := []byte("--X\r\nA: a\nb\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Value != "a\nb" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
}

func TestFoldedHeaderInsertsSpace(t *testing.T) {
	input := []byte("--X\r\nA: one\r\n two\r\n\r\n\r\n--X--")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 1 || result.Headers[0].Value != "one two" {
		t.Fatalf("unexpected headers: %+v", result.Headers)
	}
}

func TestHeaderNamesLowercased(t *testing.T) {
	input := []byte("--X\r\nContent-Type: text/plain\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if result.Headers[0].Name != "content-type" {
		t.Fatalf("expected lowercased name, got %q", result.Headers[0].Name)
	}
	if result.Headers[0].Value != "text/plain" {
		t.Fatalf("expected preserved case in value, got %q", result.Headers[0].Value)
	}
}

func TestMultipleHeaders(t *testing.T) {
	input := []byte("--X\r\nA: 1\r\nB: 2\r\nC: 3\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, 3)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d: %+v", len(result.Headers), result.Headers)
	}

	want := []Header{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}, {Name: "c", Value: "3"}}
	for i, h := range want {
		if result.Headers[i] != h {
			t.Fatalf("header %d: expected %+v, got %+v", i, h, result.Headers[i])
		}
	}
}

func TestTerminalBoundaryNoHeaders(t *testing.T) {
	input := []byte("--X--epilogue")
	p := NewHeaderParser("X", Settings{})

	result, err := feedHeaders(t, p, input, len(input)+1)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if len(result.Headers) != 0 {
		t.Fatalf("expected no headers, got %+v", result.Headers)
	}
	if !result.Terminal {
		t.Fatal("expected Terminal to be set for a closing boundary")
	}
	if string(result.Remaining) != "epilogue" {
		t.Fatalf("unexpected remaining: %q", result.Remaining)
	}
}

func TestMalformedHeaderMissingColon(t *testing.T) {
	input := []byte("--X\r\nNoColonHere\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	_, err := feedHeaders(t, p, input, len(input)+1)
	if err != ErrInvalidHeader {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestByteAfterBoundarySyntaxError(t *testing.T) {
	input := []byte("--Xgarbage\r\n\r\n")
	p := NewHeaderParser("X", Settings{})

	_, err := feedHeaders(t, p, input, len(input)+1)
	if err != ErrRequestSyntaxError {
		t.Fatalf("expected ErrRequestSyntaxError, got %v", err)
	}
}

func TestEmptyContinuationFails(t *testing.T) {
	p := NewHeaderParser("X", Settings{})

	result, err := p.Feed([]byte("--"))
	if err != nil || !result.NeedMore {
		t.Fatalf("expected need-more, got result=%+v err=%v", result, err)
	}

	_, err = p.Feed(nil)
	if err != ErrEmptyContinuation {
		t.Fatalf("expected ErrEmptyContinuation, got %v", err)
	}
}

func TestDeadParserRejectsFurtherFeeds(t *testing.T) {
	p := NewHeaderParser("X", Settings{})

	if _, err := p.Feed([]byte("--Xgarbage\r\n\r\n")); err != ErrRequestSyntaxError {
		t.Fatalf("expected ErrRequestSyntaxError, got %v", err)
	}

	if _, err := p.Feed([]byte("more")); err != ErrParserIsDead {
		t.Fatalf("expected ErrParserIsDead, got %v", err)
	}
}
