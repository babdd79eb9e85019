// Package state provides filesystem-backed storage: the append-only JSONL
// session log, the per-workspace session index, and log archival.
package state

import "github.com/user/termtrace/internal/types"

// Compile-time interface compliance check.
var _ types.RecordSink = (*Log)(nil)
