package summarize

import (
	"fmt"
	"strings"

	"github.com/user/termtrace/internal/types"
)

// RenderMarkdown formats a batch of records as a Markdown transcript.
// Notes become bold one-liners, commands become fenced output blocks.
func RenderMarkdown(records []*types.Record) string {
	var blocks []string
	for _, r := range records {
		if r.Type == types.RecordNote {
			blocks = append(blocks, fmt.Sprintf("[%s] **Note:** %s", r.Timestamp, r.Text))
			continue
		}
		blocks = append(blocks, fmt.Sprintf(
			"[%s] **Command:** `%s`\n```\n%s\n```\nExit code: %d",
			r.Timestamp, r.Command, r.Output, r.ExitCode))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderDigest produces a small deterministic summary of a batch: entry
// counts plus up to the five most recent commands.
func RenderDigest(records []*types.Record) string {
	var notes int
	var commands []string
	for _, r := range records {
		if r.Type == types.RecordNote {
			notes++
			continue
		}
		commands = append(commands, r.Command)
	}

	lines := []string{fmt.Sprintf(
		"Session summary: %d entries (%d commands, %d notes).",
		len(records), len(commands), notes)}

	if len(commands) > 5 {
		commands = commands[len(commands)-5:]
	}
	if len(commands) > 0 {
		lines = append(lines, "Recent commands:")
		for _, c := range commands {
			lines = append(lines, "- "+c)
		}
	}
	return strings.Join(lines, "\n")
}

// PromptBlocks renders each record as a plain-text block suitable for an
// LLM prompt. Blocks are returned individually so the token budget can
// drop the oldest ones.
func PromptBlocks(records []*types.Record) []string {
	blocks := make([]string, 0, len(records))
	for _, r := range records {
		if r.Type == types.RecordNote {
			blocks = append(blocks, "# Note: "+r.Text)
			continue
		}
		blocks = append(blocks, fmt.Sprintf(
			"Command: %s\nOutput: %s\nExit code: %d", r.Command, r.Output, r.ExitCode))
	}
	return blocks
}
