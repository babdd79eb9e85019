// internal/trace/capture.go
package trace

import (
	"fmt"
	"os"
	"sync"
)

// Channel tees command output into a private temporary sink for the
// lifetime of one command. The terminal fan-out writes every byte to the
// channel unconditionally; bytes are persisted only between Begin and End,
// so the live terminal is never disturbed by the capture state.
type Channel struct {
	mu   sync.Mutex
	dir  string
	sink *os.File
}

// NewChannel creates a capture channel whose sinks live under dir. An empty
// dir falls back to the system temp directory.
func NewChannel(dir string) *Channel {
	return &Channel{dir: dir}
}

// Begin allocates a fresh, uniquely named sink. A stray Begin with no
// matching End discards the previous sink first so captures never bleed
// into each other.
func (c *Channel) Begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sink != nil {
		c.discardLocked()
	}
	f, err := os.CreateTemp(c.dir, "termtrace-capture-*.log")
	if err != nil {
		return fmt.Errorf("create capture sink: %w", err)
	}
	c.sink = f
	return nil
}

// End detaches the sink first, so no further output can leak in, then
// returns its full contents and deletes it. A missing or unreadable sink
// yields an empty result rather than an error.
func (c *Channel) End() string {
	c.mu.Lock()
	f := c.sink
	c.sink = nil
	c.mu.Unlock()

	if f == nil {
		return ""
	}
	name := f.Name()
	defer os.Remove(name)
	if err := f.Close(); err != nil {
		return ""
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return ""
	}
	return string(data)
}

// Write implements io.Writer for the terminal fan-out. It reports full
// writes unconditionally: a broken sink drops the capture, never the
// session.
func (c *Channel) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sink != nil {
		if _, err := c.sink.Write(p); err != nil {
			c.discardLocked()
		}
	}
	return len(p), nil
}

// Active reports whether a capture is in progress.
func (c *Channel) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sink != nil
}

// discardLocked closes and removes the current sink. Caller must hold mu.
func (c *Channel) discardLocked() {
	if c.sink == nil {
		return
	}
	name := c.sink.Name()
	c.sink.Close()
	os.Remove(name)
	c.sink = nil
}
