// internal/trace/classifier_test.go
package trace

import "testing"

func TestIsNote(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"# a note", true},
		{"#nospace", true},
		{"   # indented", true},
		{"\t# tab indented", true},
		{"echo hi", false},
		{"echo '# not a note'", false},
		{"", false},
		{"   ", false},
		{"git commit -m '#42'", false},
	}
	for _, tt := range tests {
		if got := IsNote(tt.line); got != tt.want {
			t.Errorf("IsNote(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
