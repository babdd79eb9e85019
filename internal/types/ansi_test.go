// internal/types/ansi_test.go
package types

import "testing"

func TestStripEscapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello\n", "hello\n"},
		{"csi color", "\x1b[32mok\x1b[0m", "ok"},
		{"csi cursor", "\x1b[2Kline", "line"},
		{"osc title", "\x1b]0;window title\x07output", "output"},
		{"osc cwd", "\x1b]7;file://host/tmp\x1b\\done", "done"},
		{"mixed", "\x1b[1mbold\x1b[0m and \x1b]0;t\x07plain", "bold and plain"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripEscapes(tt.in); got != tt.want {
				t.Errorf("StripEscapes(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
