package multipart

// BodyResult is returned by BodyParser.Feed. When NeedMore is true, Chunk
// holds bytes safely attributable to the body so far (§3's "Need more
// input" variant) and Feed should be called again with more bytes. When
// NeedMore is false, Chunk is the final chunk of the part body, Done
// reports whether the closing "--boundary--" was found (as opposed to a
// mid-message "--boundary"), and Remaining holds whatever follows.
type BodyResult struct {
	NeedMore  bool
	Chunk     []byte
	Done      bool
	Remaining []byte
}

// BodyParser implements §4.4, grounded on chunkedBodyParser.Feed
// (src/snowdrop/chunked.go): the same (done, extra, err) shape, the same
// strategy of holding back an undecidable tail across Feed calls, just
// scanning for "\r\n--boundary" instead of a hex chunk-size line.
type BodyParser struct {
	dashBoundary     []byte // "--" + boundary
	crlfDashBoundary []byte // "\r\n--" + boundary
	settings         Settings

	state   bodyState
	atStart bool
	pending []byte
	total   int64 // bytes handed back as Chunk so far, checked against settings.MaxPartBodyLength
}

// NewBodyParser constructs a parser positioned at the start of a part's
// body (§4.4's entry precondition).
func NewBodyParser(boundary string, settings Settings) *BodyParser {
	dashBoundary := append([]byte("--"), boundary...)
	crlfDashBoundary := append([]byte("\r\n"), dashBoundary...)

	return &BodyParser{
		dashBoundary:     dashBoundary,
		crlfDashBoundary: crlfDashBoundary,
		settings:         PrepareSettings(settings),
		state:            bScanning,
		atStart:          true,
	}
}

// checkLimit accounts n more chunk bytes against the configured hard limit,
// the body counterpart to the header block's MaxHeaderBlockLength check
// (headers.go).
func (p *BodyParser) checkLimit(n int) error {
	p.total += int64(n)
	if p.total > p.settings.MaxPartBodyLength {
		p.die()
		return ErrBufferOverflow
	}
	return nil
}

func (p *BodyParser) die() {
	p.state = bDead
	p.pending = nil
}

// Feed advances the state machine with more bytes.
func (p *BodyParser) Feed(input []byte) (BodyResult, error) {
	switch p.state {
	case bDone:
		return BodyResult{}, ErrParserIsDead
	case bDead:
		return BodyResult{}, ErrParserIsDead
	}

	if len(input) == 0 {
		p.die()
		return BodyResult{}, ErrEmptyContinuation
	}

	data := input
	if len(p.pending) > 0 {
		data = append(append([]byte(nil), p.pending...), input...)
		p.pending = nil
	}

	if p.atStart {
		if len(data) < len(p.dashBoundary) {
			p.pending = append([]byte(nil), data...)
			return BodyResult{NeedMore: true}, nil
		}

		p.atStart = false

		if hasPrefixAt(data, 0, p.dashBoundary) {
			p.state = bDone
			return BodyResult{Remaining: data}, nil
		}
	}

	minLookahead := len(p.crlfDashBoundary) + 2 // §4.4: len(boundary)+6

	i := 0
	for {
		if len(data)-i < minLookahead {
			if err := p.checkLimit(i); err != nil {
				return BodyResult{}, err
			}
			p.pending = append([]byte(nil), data[i:]...)
			return BodyResult{NeedMore: true, Chunk: data[:i]}, nil
		}

		if hasPrefixAt(data, i, p.crlfDashBoundary) {
			after := data[i+len(p.crlfDashBoundary):]

			switch {
			case after[0] == cr && after[1] == lf:
				if err := p.checkLimit(i); err != nil {
					return BodyResult{}, err
				}
				p.state = bDone
				return BodyResult{Chunk: data[:i], Remaining: data[i+2:]}, nil
			case after[0] == dash && after[1] == dash:
				if err := p.checkLimit(i); err != nil {
					return BodyResult{}, err
				}
				p.state = bDone
				return BodyResult{Chunk: data[:i], Done: true, Remaining: after[2:]}, nil
			default:
				i += 2
			}

			continue
		}

		i++
	}
}
