// internal/shell/protocol.go

// Package shell runs the user's interactive shell under a pseudo-terminal
// and feeds command boundaries and output into the capture core.
package shell

import (
	"bytes"
	"encoding/base64"
	"strconv"
)

// EventKind identifies a boundary protocol frame.
type EventKind string

const (
	EventInput EventKind = "input"
	EventStart EventKind = "start"
	EventEnd   EventKind = "end"
)

// Event is one decoded boundary frame from the shell hooks.
type Event struct {
	Kind     EventKind
	Text     string // input and start
	ExitCode int    // end
}

var (
	framePrefix = []byte("\x1b]7733;")
	frameEnd    = byte('\x07')
)

// maxFrameLen bounds how long a frame prefix is withheld while waiting for
// its terminator; past this the bytes are flushed as ordinary output.
const maxFrameLen = 64 * 1024

// Segment is one in-order piece of the parsed stream: either raw
// passthrough bytes or a decoded boundary event, never both. Order
// matters because capture starts and stops on the events between the
// byte runs.
type Segment struct {
	Data  []byte
	Event *Event
}

// Parser extracts boundary frames from a raw pty stream. Frames can arrive
// split across reads, so a suspected frame prefix is withheld until it
// either completes or proves not to be ours.
type Parser struct {
	pending []byte
}

// Feed consumes raw pty bytes and returns the stream as ordered segments
// with all complete frames stripped out of the passthrough bytes.
func (p *Parser) Feed(data []byte) []Segment {
	buf := data
	if len(p.pending) > 0 {
		buf = append(p.pending, data...)
		p.pending = nil
	}

	var segments []Segment
	var run []byte
	flush := func() {
		if len(run) > 0 {
			segments = append(segments, Segment{Data: run})
			run = nil
		}
	}

	for len(buf) > 0 {
		esc := bytes.IndexByte(buf, '\x1b')
		if esc < 0 {
			run = append(run, buf...)
			break
		}
		run = append(run, buf[:esc]...)
		buf = buf[esc:]

		if !bytes.HasPrefix(buf, framePrefix) {
			if len(buf) < len(framePrefix) && bytes.HasPrefix(framePrefix, buf) {
				// Possible frame start cut off at the read boundary.
				p.pending = append(p.pending, buf...)
				flush()
				return segments
			}
			// Some other escape sequence; pass the ESC through untouched.
			run = append(run, buf[0])
			buf = buf[1:]
			continue
		}

		term := bytes.IndexByte(buf, frameEnd)
		if term < 0 {
			if len(buf) > maxFrameLen {
				// Runaway frame; treat as ordinary output.
				run = append(run, buf...)
				flush()
				return segments
			}
			p.pending = append(p.pending, buf...)
			flush()
			return segments
		}

		body := buf[len(framePrefix):term]
		buf = buf[term+1:]

		if ev, ok := decodeFrame(body); ok {
			flush()
			segments = append(segments, Segment{Event: &ev})
		}
	}
	flush()
	return segments
}

// decodeFrame parses "<kind>;<payload>". Malformed frames are dropped.
func decodeFrame(body []byte) (Event, bool) {
	kind, payload, found := bytes.Cut(body, []byte{';'})
	if !found {
		return Event{}, false
	}
	switch EventKind(kind) {
	case EventInput, EventStart:
		text, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventKind(kind), Text: string(text)}, true
	case EventEnd:
		code, err := strconv.Atoi(string(payload))
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventEnd, ExitCode: code}, true
	default:
		return Event{}, false
	}
}
