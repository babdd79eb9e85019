package summarize

import (
	"strings"
	"testing"
)

func TestNewBudget(t *testing.T) {
	b, err := NewBudget("gpt-3.5-turbo", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if b == nil {
		t.Fatal("expected non-nil budget")
	}
}

func TestNewBudgetUnknownModelFallsBack(t *testing.T) {
	b, err := NewBudget("some-future-model", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if n := b.Count("hello world"); n == 0 {
		t.Errorf("Count = %d, want > 0", n)
	}
}

func TestFitRecentKeepsEverythingUnderBudget(t *testing.T) {
	b, err := NewBudget("gpt-3.5-turbo", 10000)
	if err != nil {
		t.Fatal(err)
	}

	blocks := []string{"Command: ls\nOutput: a.txt\nExit code: 0", "# Note: done"}
	got := b.FitRecent(blocks)
	want := strings.Join(blocks, "\n\n")
	if got != want {
		t.Errorf("FitRecent = %q, want %q", got, want)
	}
}

func TestFitRecentDropsOldest(t *testing.T) {
	b, err := NewBudget("gpt-3.5-turbo", 40)
	if err != nil {
		t.Fatal(err)
	}

	old := "Command: cat big.log\nOutput: " + strings.Repeat("x ", 200) + "\nExit code: 0"
	recent := "# Note: finished the migration"

	got := b.FitRecent([]string{old, recent})
	if got != recent {
		t.Errorf("FitRecent should keep only the newest block, got %q", got)
	}
}

func TestFitRecentKeepsOversizedNewestBlock(t *testing.T) {
	b, err := NewBudget("gpt-3.5-turbo", 5)
	if err != nil {
		t.Fatal(err)
	}

	huge := "Command: dmesg\nOutput: " + strings.Repeat("kernel ", 100) + "\nExit code: 0"
	if got := b.FitRecent([]string{huge}); got != huge {
		t.Error("an oversized single block should still be kept")
	}
}
