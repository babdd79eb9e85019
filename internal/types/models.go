// internal/types/models.go
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RecordType discriminates the two session log record variants.
type RecordType string

const (
	RecordNote    RecordType = "note"
	RecordCommand RecordType = "command"
)

// NoteMarker is the leading character that marks an input line as a note.
const NoteMarker = "#"

// WireTimeFormat is the fixed UTC timestamp layout used on the wire.
const WireTimeFormat = "2006-01-02T15:04:05Z"

// Timestamp renders t in the wire format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(WireTimeFormat)
}

// Record is one unit in a session log: either a free-text note or an
// executed command with its captured output and exit status. A record is
// built once, handed to the log writer, and never mutated afterwards.
type Record struct {
	Type      RecordType
	Timestamp string

	// Note fields.
	Text string

	// Command fields.
	Command  string
	Output   string
	ExitCode int
}

// NewNote builds a note record from a raw input line, stripping the leading
// marker and any whitespace around the remaining text.
func NewNote(at time.Time, line string) *Record {
	text := strings.TrimLeft(line, " \t")
	text = strings.TrimPrefix(text, NoteMarker)
	text = strings.TrimLeft(text, " \t")
	return &Record{
		Type:      RecordNote,
		Timestamp: Timestamp(at),
		Text:      text,
	}
}

// NewCommand builds a command record. Terminal escape sequences are removed
// from the captured output so the log stays plain text.
func NewCommand(started time.Time, command, output string, exitCode int) *Record {
	return &Record{
		Type:      RecordCommand,
		Timestamp: Timestamp(started),
		Command:   command,
		Output:    StripEscapes(output),
		ExitCode:  exitCode,
	}
}

// noteWire and commandWire pin the per-variant field sets: a note never
// carries command fields, and a command record always carries "output" and
// "exit_code" even when the output is empty.
type noteWire struct {
	Type      RecordType `json:"type"`
	Timestamp string     `json:"timestamp"`
	Text      string     `json:"text"`
}

type commandWire struct {
	Type      RecordType `json:"type"`
	Timestamp string     `json:"timestamp"`
	Command   string     `json:"command"`
	Output    string     `json:"output"`
	ExitCode  int        `json:"exit_code"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case RecordNote:
		return json.Marshal(noteWire{Type: r.Type, Timestamp: r.Timestamp, Text: r.Text})
	case RecordCommand:
		return json.Marshal(commandWire{
			Type:      r.Type,
			Timestamp: r.Timestamp,
			Command:   r.Command,
			Output:    r.Output,
			ExitCode:  r.ExitCode,
		})
	default:
		return nil, fmt.Errorf("unknown record type: %q", r.Type)
	}
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type      RecordType `json:"type"`
		Timestamp string     `json:"timestamp"`
		Text      string     `json:"text"`
		Command   string     `json:"command"`
		Output    string     `json:"output"`
		ExitCode  int        `json:"exit_code"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch wire.Type {
	case RecordNote, RecordCommand:
	default:
		return fmt.Errorf("unknown record type: %q", wire.Type)
	}
	*r = Record{
		Type:      wire.Type,
		Timestamp: wire.Timestamp,
		Text:      wire.Text,
		Command:   wire.Command,
		Output:    wire.Output,
		ExitCode:  wire.ExitCode,
	}
	return nil
}

// SessionIndex is the per-session metadata tracked alongside the log.
type SessionIndex struct {
	SessionID SessionID     `json:"session_id"`
	Workspace WorkspaceName `json:"workspace"`
	Name      string        `json:"name"`
	LogPath   string        `json:"log_path"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Session statuses.
const (
	StatusActive   = "active"
	StatusEnded    = "ended"
	StatusArchived = "archived"
)
