// internal/trace/boundary.go
package trace

import (
	"log/slog"
	"time"

	"github.com/user/termtrace/internal/types"
)

// Detector marks command start and end boundaries and assembles exactly one
// command record per executed command. It owns a single-slot in-flight
// state; notes never reach it.
type Detector struct {
	channel *Channel
	sink    types.RecordSink
	now     func() time.Time

	inflight bool
	command  string
	started  time.Time
}

// NewDetector wires a detector to its capture channel and record sink.
func NewDetector(channel *Channel, sink types.RecordSink) *Detector {
	return &Detector{
		channel: channel,
		sink:    sink,
		now:     time.Now,
	}
}

// Start records the command text and UTC start time and opens the capture
// sink. A failed sink is absorbed: the command still runs and displays, its
// record will simply carry empty output. A Start while another command is
// in flight drops the stale state, mirroring the channel's stray-Begin
// handling.
func (d *Detector) Start(command string) {
	if d.inflight {
		slog.Warn("command start with in-flight state, dropping previous", "command", d.command)
	}
	d.inflight = true
	d.command = command
	d.started = d.now()

	if err := d.channel.Begin(); err != nil {
		slog.Warn("capture sink unavailable, output will not be recorded", "error", err)
	}
}

// End captures the exit status, drains the capture channel, and appends the
// finished record. It then clears the in-flight slot so the next command
// starts clean. Firing with no in-flight command is a no-op: the shell runs
// its end hook for internal no-ops too.
func (d *Detector) End(exitCode int) {
	if !d.inflight {
		return
	}
	output := d.channel.End()
	record := types.NewCommand(d.started, d.command, output, exitCode)

	d.inflight = false
	d.command = ""

	if err := d.sink.Append(record); err != nil {
		slog.Error("append command record", "error", err)
	}
}

// InFlight reports whether a command boundary is currently open.
func (d *Detector) InFlight() bool {
	return d.inflight
}
