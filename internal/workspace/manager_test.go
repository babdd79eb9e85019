// internal/workspace/manager_test.go
package workspace

import (
	"os"
	"testing"

	"github.com/user/termtrace/internal/types"
)

func TestEnsureCreatesManifest(t *testing.T) {
	m := NewManager(t.TempDir())

	manifest, err := m.Ensure("demo")
	if err != nil {
		t.Fatal(err)
	}
	if manifest.Name != "demo" {
		t.Errorf("Name = %q", manifest.Name)
	}
	if manifest.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if _, err := os.Stat(m.Dir("demo")); err != nil {
		t.Errorf("workspace dir missing: %v", err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	m := NewManager(t.TempDir())

	first, err := m.Ensure("demo")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Ensure("demo")
	if err != nil {
		t.Fatal(err)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Errorf("Ensure overwrote manifest: %v vs %v", first.CreatedAt, second.CreatedAt)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	m := NewManager(t.TempDir())

	manifest, err := m.Ensure("demo")
	if err != nil {
		t.Fatal(err)
	}
	manifest.Summarize.Mode = "llm"
	manifest.Summarize.BatchSize = 10
	if err := m.SaveManifest(manifest); err != nil {
		t.Fatal(err)
	}

	reloaded, err := m.Ensure("demo")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Summarize.Mode != "llm" || reloaded.Summarize.BatchSize != 10 {
		t.Errorf("reloaded settings = %+v", reloaded.Summarize)
	}
}

func TestListSorted(t *testing.T) {
	m := NewManager(t.TempDir())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := m.Ensure(types.WorkspaceName(name)); err != nil {
			t.Fatal(err)
		}
	}

	manifests, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(manifests) != 3 {
		t.Fatalf("expected 3 workspaces, got %d", len(manifests))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, manifest := range manifests {
		if string(manifest.Name) != want[i] {
			t.Errorf("manifest %d = %q, want %q", i, manifest.Name, want[i])
		}
	}
}

func TestListEmptyRoot(t *testing.T) {
	m := NewManager(t.TempDir() + "/missing")
	manifests, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if manifests != nil {
		t.Errorf("expected nil, got %v", manifests)
	}
}

func TestRemove(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Ensure("doomed"); err != nil {
		t.Fatal(err)
	}
	if err := m.Remove("doomed"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(m.Dir("doomed")); !os.IsNotExist(err) {
		t.Error("expected workspace dir removed")
	}
}

func TestRemoveUnknown(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.Remove("ghost"); err == nil {
		t.Fatal("expected error for unknown workspace")
	}
}

func TestInvalidNames(t *testing.T) {
	m := NewManager(t.TempDir())
	for _, name := range []string{"", "../escape", "a/b"} {
		if _, err := m.Ensure(types.WorkspaceName(name)); err == nil {
			t.Errorf("Ensure(%q): expected error", name)
		}
	}
}
