package multipart

// headerState drives HeaderParser.Feed. Named the way the teacher names its
// parsingState constants (src/snowdrop/states.go, httpparser/httpparser.go).
type headerState uint8

const (
	// hLocateBoundary is the entry state: hunting for the first
	// "--boundary" (§4.3 preamble skipper folds into this state).
	hLocateBoundary headerState = iota + 1
	// hAfterBoundary examines the two bytes following "--boundary".
	hAfterBoundary
	// hHeaderLineStart is entered right after a CRLF that begins a new
	// header line, or that could instead be the terminating CRLF CRLF.
	hHeaderLineStart
	// hNameLeadingWS skips SP/HTAB before a header name (§4.2 name loop).
	hNameLeadingWS
	// hName accumulates header name bytes up to ':'.
	hName
	// hValueLeadingWS skips SP/HTAB right after the colon.
	hValueLeadingWS
	// hValue accumulates header value bytes, watching for CRLF.
	hValue
	// hDone means Feed already emitted a Complete result; further calls
	// are refused with ErrParserIsDead until Reset.
	hDone
	// hDead means Feed already returned a fatal error.
	hDead
)

// bodyState drives BodyParser.Feed.
type bodyState uint8

const (
	// bScanning is the steady state: scanning for "\r\n--boundary".
	bScanning bodyState = iota + 1
	// bDone/bDead mirror headerState's terminal states.
	bDone
	bDead
)
