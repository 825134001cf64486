package multipart

import "errors"

var (
	// ErrRequestSyntaxError marks an unexpected byte following --boundary:
	// neither CRLF nor -- (§4.2, §7).
	ErrRequestSyntaxError = errors.New("multipart: syntax error after boundary")

	// ErrInvalidHeader marks a header line with no colon before the end of
	// the header block.
	ErrInvalidHeader = errors.New("multipart: malformed header line")

	// ErrInvalidHeaderText marks a header name or value that failed UTF-8
	// validation on commit.
	ErrInvalidHeaderText = errors.New("multipart: header is not valid utf-8")

	// ErrBufferOverflow marks a header line or accumulated body exceeding
	// the configured limit.
	ErrBufferOverflow = errors.New("multipart: buffer size exceeded")

	// ErrEmptyContinuation marks an empty buffer fed to a suspended parser.
	ErrEmptyContinuation = errors.New("multipart: continuation fed empty input")

	// ErrParserIsDead marks a parser that already failed or completed and
	// was never reset.
	ErrParserIsDead = errors.New("multipart: parser is dead")
)
