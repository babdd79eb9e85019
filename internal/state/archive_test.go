// internal/state/archive_test.go
package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/termtrace/internal/types"
)

func TestArchiveRoundTrip(t *testing.T) {
	log := tempLog(t)
	if err := log.Append(types.NewNote(testTime, "# before archive")); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(types.NewCommand(testTime, "echo hi", "hi\n", 0)); err != nil {
		t.Fatal(err)
	}
	original, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatal(err)
	}

	archivePath, err := Archive(log.Path())
	if err != nil {
		t.Fatal(err)
	}
	if archivePath != log.Path()+".zst" {
		t.Errorf("archive path = %q", archivePath)
	}
	if _, err := os.Stat(log.Path()); !os.IsNotExist(err) {
		t.Error("expected original log removed")
	}

	if err := Verify(archivePath); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	content, err := ReadArchived(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != string(original) {
		t.Errorf("archived content mismatch:\ngot  %q\nwant %q", content, original)
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	log := tempLog(t)
	if err := log.Append(types.NewNote(testTime, "# data")); err != nil {
		t.Fatal(err)
	}
	archivePath, err := Archive(log.Path())
	if err != nil {
		t.Fatal(err)
	}

	// Tamper with the recorded digest.
	sumPath := archivePath + ".b2sum"
	data, err := os.ReadFile(sumPath)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), string(data[0]), flip(data[0]), 1)
	if err := os.WriteFile(sumPath, []byte(tampered), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Verify(archivePath); err == nil {
		t.Fatal("expected checksum mismatch")
	}
}

func TestArchiveMissingLog(t *testing.T) {
	if _, err := Archive(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Fatal("expected error for missing log")
	}
}

// flip returns a different hex digit as a string.
func flip(b byte) string {
	if b == 'a' {
		return "b"
	}
	return "a"
}
