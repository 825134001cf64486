package multipart

import (
	"github.com/scott-ainsworth/go-ascii"
	"github.com/valyala/bytebufferpool"
)

var headerBufPool bytebufferpool.Pool

// HeadersResult is returned by HeaderParser.Feed. When NeedMore is true,
// Headers and Remaining are unset; call Feed again with more bytes. When
// NeedMore is false, the header block is complete: Headers holds every
// (name, value) pair in source order and Remaining begins immediately
// after the CRLF CRLF that terminates the block (or, for a terminal
// "--boundary--", immediately after it) - §3's "Complete" variant.
type HeadersResult struct {
	NeedMore  bool
	Headers   []Header
	Remaining []byte

	// Terminal is set when the "boundary" found was actually the closing
	// "--boundary--": there is no header block, and no part, because the
	// multipart body has ended. Distinguishes that case from a genuine
	// part whose header block happens to be empty.
	Terminal bool
}

// HeaderParser implements §4.2 (header-block parser) and §4.3 (preamble
// skipper) as a single suspendable state machine, in the style of
// httpRequestParser.Feed: an explicit state advanced by repeated Feed
// calls rather than a boxed continuation (§9 note (b)).
type HeaderParser struct {
	dashBoundary     []byte // "--" + boundary
	crlfDashBoundary []byte // "\r\n--" + boundary
	settings         Settings

	state   headerState
	pending []byte // bytes held back across Feed calls, undecided so far

	// atStart is true only for the very first byte this parser will ever
	// examine (or, after Reset, the first byte of the next part's header
	// block) - the one position where a bare "--boundary" with no leading
	// CRLF is an acceptable delimiter (§4.3). It is cleared the moment that
	// byte is examined, however that Feed call ends, so a resumed Feed
	// after a mid-preamble suspend never re-derives it from i==0 of the
	// resumed buffer. Mirrors BodyParser.atStart.
	atStart bool

	buf     *bytebufferpool.ByteBuffer // raw name+value bytes of the header currently being parsed
	nameEnd int                        // buf[:nameEnd] is the name, buf[nameEnd:] is the value so far
	headers []Header
}

// NewHeaderParser constructs a parser that will hunt for boundary
// (without its leading "--") starting at the very beginning of whatever
// bytes are first fed to it - which may be a preamble (§4.3) or may
// already be positioned at "--boundary" (the common case for every part
// after the first).
func NewHeaderParser(boundary string, settings Settings) *HeaderParser {
	settings = PrepareSettings(settings)

	dashBoundary := append([]byte("--"), boundary...)
	crlfDashBoundary := append([]byte("\r\n"), dashBoundary...)

	buf := headerBufPool.Get()
	if cap(buf.B) < settings.InitialHeaderBufferLength {
		buf.B = make([]byte, 0, settings.InitialHeaderBufferLength)
	}

	return &HeaderParser{
		dashBoundary:     dashBoundary,
		crlfDashBoundary: crlfDashBoundary,
		settings:         settings,
		state:            hLocateBoundary,
		atStart:          true,
		buf:              buf,
	}
}

// Reset prepares the parser to parse the header block of the next part,
// reusing its scratch buffer the way httpRequestParser.Clear reuses
// p.headersBuffer.
func (p *HeaderParser) Reset() {
	p.state = hLocateBoundary
	p.atStart = true
	p.pending = nil
	p.buf.Reset()
	p.nameEnd = 0
	p.headers = nil
}

// Release returns the parser's pooled scratch buffer. Call it once the
// parser (and every Header string it produced, which are independent
// copies) is no longer needed.
func (p *HeaderParser) Release() {
	headerBufPool.Put(p.buf)
}

func (p *HeaderParser) die() {
	p.state = hDead
	p.pending = nil
	p.buf.Reset()
}

func (p *HeaderParser) suspend(data []byte, i int) (HeadersResult, error) {
	if i < len(data) {
		p.pending = append(p.pending[:0], data[i:]...)
	} else {
		p.pending = p.pending[:0]
	}

	return HeadersResult{NeedMore: true}, nil
}

// Feed advances the state machine with more bytes. See HeadersResult for
// the result shape and §4.1-4.3 for the state machine this implements.
func (p *HeaderParser) Feed(input []byte) (HeadersResult, error) {
	switch p.state {
	case hDead:
		return HeadersResult{}, ErrParserIsDead
	case hDone:
		return HeadersResult{}, ErrParserIsDead
	}

	if len(input) == 0 {
		p.die()
		return HeadersResult{}, ErrEmptyContinuation
	}

	data := input
	if len(p.pending) > 0 {
		data = append(append([]byte(nil), p.pending...), input...)
		p.pending = nil
	}

	i := 0

	for i < len(data) {
		switch p.state {

		case hLocateBoundary:
			if p.atStart {
				need := len(p.dashBoundary) + 2
				if len(data) < need {
					return p.suspend(data, i)
				}
				p.atStart = false
				if hasPrefixAt(data, 0, p.dashBoundary) {
					p.state = hAfterBoundary
					i += len(p.dashBoundary)
					continue
				}
				// fall through to the CRLF-prefixed scan, which starts
				// at this same position
				continue
			}

			if len(data)-i < len(p.crlfDashBoundary) {
				return p.suspend(data, i)
			}
			if hasPrefixAt(data, i, p.crlfDashBoundary) {
				p.state = hAfterBoundary
				i += len(p.crlfDashBoundary)
				continue
			}
			i++

		case hAfterBoundary:
			if len(data)-i < 2 {
				return p.suspend(data, i)
			}

			switch {
			case data[i] == dash && data[i+1] == dash:
				p.state = hDone
				return HeadersResult{Headers: nil, Remaining: data[i+2:], Terminal: true}, nil
			case data[i] == cr && data[i+1] == lf:
				i += 2
				p.state = hHeaderLineStart
			default:
				p.die()
				return HeadersResult{}, ErrRequestSyntaxError
			}

		case hHeaderLineStart:
			if len(data)-i < 2 {
				return p.suspend(data, i)
			}
			if data[i] == cr && data[i+1] == lf {
				p.state = hDone
				return HeadersResult{Headers: p.headers, Remaining: data[i+2:]}, nil
			}

			p.state = hNameLeadingWS

		case hNameLeadingWS:
			if isWSP(data[i]) {
				i++
				continue
			}
			p.state = hName

		case hName:
			switch {
			case data[i] == clnl:
				p.nameEnd = p.buf.Len()
				i++
				p.state = hValueLeadingWS
			case !ascii.IsPrint(data[i]):
				p.die()
				return HeadersResult{}, ErrInvalidHeader
			default:
				_ = p.buf.WriteByte(data[i])

				if p.buf.Len() > p.settings.MaxHeaderBlockLength {
					p.die()
					return HeadersResult{}, ErrBufferOverflow
				}

				i++
			}

		case hValueLeadingWS:
			if isWSP(data[i]) {
				i++
				continue
			}
			p.state = hValue

		case hValue:
			if data[i] == cr {
				if len(data)-i < 2 {
					return p.suspend(data, i)
				}

				if data[i+1] != lf {
					// a lone CR not followed by LF is not a line
					// terminator - §4.2 only special-cases the literal
					// CR LF sequence, so this byte is ordinary value text.
					_ = p.buf.WriteByte(data[i])

					if p.buf.Len() > p.settings.MaxHeaderBlockLength {
						p.die()
						return HeadersResult{}, ErrBufferOverflow
					}

					i++
					continue
				}

				if len(data)-i < 4 {
					return p.suspend(data, i)
				}

				switch {
				case data[i+2] == cr && data[i+3] == lf:
					header, herr := commitHeader(p.buf.B[:p.nameEnd], p.buf.B[p.nameEnd:])
					if herr != nil {
						p.die()
						return HeadersResult{}, herr
					}

					p.headers = append(p.headers, header)
					p.state = hDone

					return HeadersResult{Headers: p.headers, Remaining: data[i+4:]}, nil

				case isWSP(data[i+2]):
					_ = p.buf.WriteByte(sp)
					i += 3

				default:
					header, herr := commitHeader(p.buf.B[:p.nameEnd], p.buf.B[p.nameEnd:])
					if herr != nil {
						p.die()
						return HeadersResult{}, herr
					}

					p.headers = append(p.headers, header)
					p.buf.Reset()
					p.nameEnd = 0

					i += 2
					p.state = hHeaderLineStart
				}

				continue
			}

			_ = p.buf.WriteByte(data[i])

			if p.buf.Len() > p.settings.MaxHeaderBlockLength {
				p.die()
				return HeadersResult{}, ErrBufferOverflow
			}

			i++
		}
	}

	return p.suspend(data, i)
}
