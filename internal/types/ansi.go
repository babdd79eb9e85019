// internal/types/ansi.go
package types

import (
	"regexp"
	"strings"
)

// Escape sequence shapes seen in interactive shell output. OSC sequences
// (window titles, cwd reports) end in BEL or ST; CSI sequences (colors,
// cursor movement) end in a single letter.
var (
	oscPattern  = regexp.MustCompile(`\x1b\][0-9]*;[^\x07\x1b]*[\x07\x1b\\]?`)
	csiPattern  = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	bareEscapes = regexp.MustCompile(`\x1b[^\w]`)
)

// StripEscapes removes terminal escape/control sequences from captured
// output. A trailing backslash left behind by a truncated OSC terminator is
// dropped as well.
func StripEscapes(text string) string {
	text = oscPattern.ReplaceAllString(text, "")
	text = csiPattern.ReplaceAllString(text, "")
	text = bareEscapes.ReplaceAllString(text, "")
	return strings.TrimRight(text, `\`)
}
