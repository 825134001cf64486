package main

import (
	"github.com/oklog/ulid/v2"

	"github.com/floordiv/streammime/disposition"
	"github.com/floordiv/streammime/multipart"
)

type connStage uint8

const (
	stageHeaders connStage = iota
	stageBody
	stageDone
)

// connState is the per-connection accumulator, grounded on
// gnetConnContext (buff/gnet_conn.go): inbound bytes are appended here and
// handed to the active parser a full buffer at a time. A parser that needs
// more input keeps its own undecided tail, so buf is cleared before
// OnTraffic returns to wait for more bytes.
type connState struct {
	buf   []byte
	stage connStage

	hp *multipart.HeaderParser
	bp *multipart.BodyParser

	msgID     ulid.ULID
	partIndex int
	disp      disposition.ContentDisposition
	hasDisp   bool
}

func newConnState(boundary string, settings multipart.Settings, msgID ulid.ULID) *connState {
	return &connState{
		stage: stageHeaders,
		hp:    multipart.NewHeaderParser(boundary, settings),
		msgID: msgID,
	}
}

func (c *connState) append(p []byte) {
	c.buf = append(c.buf, p...)
}

func (c *connState) release() {
	if c.hp != nil {
		c.hp.Release()
	}
}

// headerLookup finds a header by name, case-insensitively. commitHeader
// already lowercases every parsed name, but name is caller-supplied (see
// handler.go's "content-disposition" literal) so the comparison stays
// robust to a mixed-case lookup key.
func headerLookup(headers []multipart.Header, name string) (string, bool) {
	want := []byte(name)
	for _, h := range headers {
		if multipart.EqualFoldASCII(want, []byte(h.Name)) {
			return h.Value, true
		}
	}
	return "", false
}
