// internal/state/eventlog.go
package state

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/valyala/fastjson"

	"github.com/user/termtrace/internal/trace"
	"github.com/user/termtrace/internal/types"
)

// Log is an append-only JSONL session log. Appends are a single write on a
// file opened with O_APPEND, so concurrent sessions sharing one log file
// never interleave partial lines.
type Log struct {
	path string
}

// NewLog creates a handle on the log file at path. The file and its
// directory are created on first append.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append serializes one record and appends it followed by a newline. The
// record is durable once Append returns nil.
func (l *Log) Append(record *types.Record) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

// AppendEntry is the immediate-entry path shared by notes and commands: the
// line is classified here, and output and exit code are ignored for notes.
// External callers (the CLI note command, shell-side fallbacks) reuse this
// single entry point.
func AppendEntry(path string, at time.Time, command, output string, exitCode int) error {
	var record *types.Record
	if trace.IsNote(command) {
		record = types.NewNote(at, command)
	} else {
		record = types.NewCommand(at, command, output, exitCode)
	}
	return NewLog(path).Append(record)
}

// ReadAll returns the ordered records in the log. Unparseable lines, such
// as a trailing partial line from a writer mid-append in another session,
// are skipped rather than treated as corruption. Reading never mutates the
// log.
func (l *Log) ReadAll() ([]*types.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var records []*types.Record
	var parser fastjson.Parser

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if rec := parseLine(&parser, scanner.Bytes()); rec != nil {
			records = append(records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan log file: %w", err)
	}
	return records, nil
}

// ReadFrom returns the records in complete lines past the byte offset,
// along with the offset just after the last complete line. A partial
// trailing line stays unconsumed so a live tail can pick it up once the
// writer finishes it.
func (l *Log) ReadFrom(offset int64) ([]*types.Record, int64, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, offset, nil
		}
		return nil, offset, fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, offset, fmt.Errorf("read log file: %w", err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil, offset, nil
	}

	var records []*types.Record
	var parser fastjson.Parser
	for _, line := range bytes.Split(data[:end], []byte{'\n'}) {
		if rec := parseLine(&parser, line); rec != nil {
			records = append(records, rec)
		}
	}
	return records, offset + int64(end) + 1, nil
}

// ParseRecords decodes raw JSONL bytes, skipping malformed lines. Used for
// reading decompressed archive content.
func ParseRecords(data []byte) []*types.Record {
	var records []*types.Record
	var parser fastjson.Parser
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if rec := parseLine(&parser, line); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// Count returns the number of parseable records in the log.
func (l *Log) Count() (int64, error) {
	records, err := l.ReadAll()
	if err != nil {
		return 0, err
	}
	return int64(len(records)), nil
}

// parseLine decodes one JSONL line into a record, returning nil for blank,
// partial, or foreign lines.
func parseLine(parser *fastjson.Parser, line []byte) *types.Record {
	if len(bytes.TrimSpace(line)) == 0 {
		return nil
	}
	v, err := parser.ParseBytes(line)
	if err != nil {
		return nil
	}
	switch string(v.GetStringBytes("type")) {
	case string(types.RecordNote):
		return &types.Record{
			Type:      types.RecordNote,
			Timestamp: string(v.GetStringBytes("timestamp")),
			Text:      string(v.GetStringBytes("text")),
		}
	case string(types.RecordCommand):
		return &types.Record{
			Type:      types.RecordCommand,
			Timestamp: string(v.GetStringBytes("timestamp")),
			Command:   string(v.GetStringBytes("command")),
			Output:    string(v.GetStringBytes("output")),
			ExitCode:  v.GetInt("exit_code"),
		}
	default:
		return nil
	}
}
