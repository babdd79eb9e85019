// internal/trace/classifier.go

// Package trace implements the session capture core: classifying input
// lines, marking command boundaries, and teeing command output into a
// temporary sink while the user's terminal keeps receiving it live.
package trace

import (
	"strings"

	"github.com/user/termtrace/internal/types"
)

// IsNote reports whether a raw input line is an annotation rather than a
// command: its first non-whitespace character is the note marker. Empty and
// malformed lines classify as commands.
func IsNote(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, types.NoteMarker)
}
