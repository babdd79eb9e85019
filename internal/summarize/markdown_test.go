package summarize

import (
	"strings"
	"testing"
	"time"

	"github.com/user/termtrace/internal/types"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testBatch() []*types.Record {
	return []*types.Record{
		types.NewNote(testTime, "# starting deploy"),
		types.NewCommand(testTime, "make build", "ok\n", 0),
		types.NewCommand(testTime, "make deploy", "failed\n", 1),
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(testBatch())

	if !strings.Contains(md, "[2025-06-01T12:00:00Z] **Note:** starting deploy") {
		t.Errorf("missing note line:\n%s", md)
	}
	if !strings.Contains(md, "**Command:** `make build`") {
		t.Errorf("missing command line:\n%s", md)
	}
	if !strings.Contains(md, "```\nfailed\n\n```\nExit code: 1") {
		t.Errorf("missing output block:\n%s", md)
	}
}

func TestRenderDigest(t *testing.T) {
	digest := RenderDigest(testBatch())

	want := "Session summary: 3 entries (2 commands, 1 notes)."
	if !strings.HasPrefix(digest, want) {
		t.Errorf("digest = %q, want prefix %q", digest, want)
	}
	if !strings.Contains(digest, "- make build") || !strings.Contains(digest, "- make deploy") {
		t.Errorf("digest missing commands:\n%s", digest)
	}
}

func TestRenderDigestRecentCommandsCapped(t *testing.T) {
	var records []*types.Record
	for _, cmd := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		records = append(records, types.NewCommand(testTime, cmd, "", 0))
	}

	digest := RenderDigest(records)
	if strings.Contains(digest, "- a\n") || strings.Contains(digest, "- b\n") {
		t.Errorf("digest should only keep the five most recent commands:\n%s", digest)
	}
	for _, cmd := range []string{"- c", "- d", "- e", "- f", "- g"} {
		if !strings.Contains(digest, cmd) {
			t.Errorf("digest missing %q:\n%s", cmd, digest)
		}
	}
}

func TestRenderDigestNotesOnly(t *testing.T) {
	digest := RenderDigest([]*types.Record{types.NewNote(testTime, "# just a note")})

	if strings.Contains(digest, "Recent commands") {
		t.Errorf("notes-only digest should not list commands:\n%s", digest)
	}
}

func TestPromptBlocks(t *testing.T) {
	blocks := PromptBlocks(testBatch())

	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	if blocks[0] != "# Note: starting deploy" {
		t.Errorf("note block = %q", blocks[0])
	}
	if blocks[2] != "Command: make deploy\nOutput: failed\n\nExit code: 1" {
		t.Errorf("command block = %q", blocks[2])
	}
}
