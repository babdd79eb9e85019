// internal/shell/handler_test.go
package shell

import (
	"testing"
	"time"

	"github.com/user/termtrace/internal/trace"
	"github.com/user/termtrace/internal/types"
)

type memorySink struct {
	records []*types.Record
}

func (m *memorySink) Append(record *types.Record) error {
	m.records = append(m.records, record)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *trace.Channel, *memorySink) {
	t.Helper()
	sink := &memorySink{}
	channel := trace.NewChannel(t.TempDir())
	detector := trace.NewDetector(channel, sink)
	h := NewHandler(detector, sink)
	h.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 30, 5, 0, time.UTC)
	}
	return h, channel, sink
}

func TestHandlerNoteLine(t *testing.T) {
	h, _, sink := newTestHandler(t)

	h.Handle(Event{Kind: EventInput, Text: "# setting up project"})
	// The shell still shows a fresh prompt, so an end frame follows.
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Type != types.RecordNote || rec.Text != "setting up project" {
		t.Errorf("record = %+v", rec)
	}
}

func TestHandlerCommandLine(t *testing.T) {
	h, channel, sink := newTestHandler(t)

	h.Handle(Event{Kind: EventInput, Text: "echo hi"})
	h.Handle(Event{Kind: EventStart, Text: "echo hi"})
	channel.Write([]byte("hi\n"))
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	rec := sink.records[0]
	if rec.Type != types.RecordCommand {
		t.Errorf("Type = %q", rec.Type)
	}
	if rec.Command != "echo hi" || rec.Output != "hi\n" || rec.ExitCode != 0 {
		t.Errorf("record = %+v", rec)
	}
}

func TestHandlerNoteNeverReachesDetector(t *testing.T) {
	h, _, sink := newTestHandler(t)

	// Even if a start frame carries a note line, the detector stays idle.
	h.Handle(Event{Kind: EventInput, Text: "# note"})
	h.Handle(Event{Kind: EventStart, Text: "# note"})
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	if len(sink.records) != 1 {
		t.Fatalf("expected only the note record, got %d", len(sink.records))
	}
	if sink.records[0].Type != types.RecordNote {
		t.Errorf("record = %+v", sink.records[0])
	}
}

func TestHandlerCommandInputNotRecorded(t *testing.T) {
	h, _, sink := newTestHandler(t)

	// A command's input frame alone produces nothing; the record comes
	// from the boundary pair.
	h.Handle(Event{Kind: EventInput, Text: "ls -la"})

	if len(sink.records) != 0 {
		t.Errorf("expected no records, got %d", len(sink.records))
	}
}

func TestHandlerInterleavedNotesAndCommands(t *testing.T) {
	h, channel, sink := newTestHandler(t)

	h.Handle(Event{Kind: EventInput, Text: "# step one"})
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	h.Handle(Event{Kind: EventInput, Text: "false"})
	h.Handle(Event{Kind: EventStart, Text: "false"})
	h.Handle(Event{Kind: EventEnd, ExitCode: 1})

	h.Handle(Event{Kind: EventInput, Text: "# step two"})
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	h.Handle(Event{Kind: EventInput, Text: "echo ok"})
	h.Handle(Event{Kind: EventStart, Text: "echo ok"})
	channel.Write([]byte("ok\n"))
	h.Handle(Event{Kind: EventEnd, ExitCode: 0})

	if len(sink.records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(sink.records))
	}
	wantTypes := []types.RecordType{
		types.RecordNote, types.RecordCommand, types.RecordNote, types.RecordCommand,
	}
	for i, want := range wantTypes {
		if sink.records[i].Type != want {
			t.Errorf("record %d type = %q, want %q", i, sink.records[i].Type, want)
		}
	}
	if sink.records[1].ExitCode != 1 {
		t.Errorf("failed command exit = %d", sink.records[1].ExitCode)
	}
	if sink.records[3].Output != "ok\n" {
		t.Errorf("command output = %q", sink.records[3].Output)
	}
}
