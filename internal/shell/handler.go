// internal/shell/handler.go
package shell

import (
	"log/slog"
	"time"

	"github.com/user/termtrace/internal/trace"
	"github.com/user/termtrace/internal/types"
)

// Handler routes decoded boundary events into the capture core. Note lines
// are recorded immediately off the input frame and never reach the
// detector; everything else flows through the start/end boundary pair.
type Handler struct {
	detector *trace.Detector
	sink     types.RecordSink
	now      func() time.Time
}

// NewHandler wires a handler to the boundary detector and record sink.
func NewHandler(detector *trace.Detector, sink types.RecordSink) *Handler {
	return &Handler{
		detector: detector,
		sink:     sink,
		now:      time.Now,
	}
}

// Handle dispatches one protocol event. Failures inside the capture or
// logging paths are reported and absorbed; nothing here may disturb the
// interactive session.
func (h *Handler) Handle(ev Event) {
	switch ev.Kind {
	case EventInput:
		if !trace.IsNote(ev.Text) {
			return
		}
		if err := h.sink.Append(types.NewNote(h.now(), ev.Text)); err != nil {
			slog.Error("append note record", "error", err)
		}
	case EventStart:
		if trace.IsNote(ev.Text) {
			// Annotation: fully handled on the input path.
			return
		}
		h.detector.Start(ev.Text)
	case EventEnd:
		h.detector.End(ev.ExitCode)
	}
}
