// internal/shell/runner.go
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/user/termtrace/internal/trace"
)

// Runner spawns the user's interactive shell under a pseudo-terminal and
// supervises one capture session: stdin is proxied to the child, child
// output is fanned out to the real terminal and the capture channel, and
// boundary frames are dispatched to the handler.
type Runner struct {
	Shell   string // shell command, defaults to zsh
	RCFile  string // user rc sourced before the hooks, may be empty
	Env     []string
	Handler *Handler
	Channel *trace.Channel

	// Stdin/Stdout default to the process's own; overridable for tests.
	Stdin  *os.File
	Stdout *os.File
}

func (r *Runner) shell() string {
	if r.Shell != "" {
		return r.Shell
	}
	return "zsh"
}

func (r *Runner) stdin() *os.File {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *Runner) stdout() *os.File {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

// Run blocks until the shell exits. Exit statuses 0 and 130 are normal
// termination (130 is the shell quitting after an interrupt).
func (r *Runner) Run(ctx context.Context) error {
	zdotdir, err := os.MkdirTemp("", "termtrace-zdotdir-")
	if err != nil {
		return fmt.Errorf("create zdotdir: %w", err)
	}
	defer os.RemoveAll(zdotdir)

	if err := writeZshrc(zdotdir, r.RCFile); err != nil {
		return err
	}

	cmd := exec.Command(r.shell(), "-i")
	cmd.Env = append(os.Environ(), "ZDOTDIR="+zdotdir)
	cmd.Env = append(cmd.Env, r.Env...)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start shell under pty: %w", err)
	}
	defer ptmx.Close()

	// Keep the child's window size in step with the real terminal.
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-winch:
				_ = pty.InheritSize(r.stdout(), ptmx)
			case <-stop:
				return
			}
		}
	}()
	winch <- syscall.SIGWINCH

	if term.IsTerminal(int(r.stdin().Fd())) {
		oldState, rawErr := term.MakeRaw(int(r.stdin().Fd()))
		if rawErr == nil {
			defer term.Restore(int(r.stdin().Fd()), oldState)
		}
	}

	// Stdin proxy; exits with the process once the shell is gone.
	go func() {
		_, _ = io.Copy(ptmx, r.stdin())
	}()

	// The output pump is the session's synchronous control flow: output
	// fan-out and boundary handling happen in stream order on this
	// goroutine.
	r.pump(ctx, ptmx)
	close(stop)

	err = cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code != 130 {
			return fmt.Errorf("shell exited with status %d", code)
		}
		return nil
	}
	return err
}

func (r *Runner) pump(ctx context.Context, ptmx *os.File) {
	var parser Parser
	buf := make([]byte, 32*1024)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			// Segments are applied in stream order so output between a
			// start and end frame, and only that output, reaches the
			// capture channel.
			for _, seg := range parser.Feed(buf[:n]) {
				if seg.Event != nil {
					r.Handler.Handle(*seg.Event)
					continue
				}
				_, _ = r.stdout().Write(seg.Data)
				_, _ = r.Channel.Write(seg.Data)
			}
		}
		if err != nil {
			// EOF (or EIO on Linux) when the child exits.
			return
		}
	}
}

// writeZshrc assembles the temp ZDOTDIR rc: the user's own rc first so the
// session behaves like their normal shell, then the capture hooks.
func writeZshrc(zdotdir, userRC string) error {
	rc := "# termtrace session rc\n"
	if userRC != "" {
		rc += fmt.Sprintf("if [ -f %q ]; then\n  source %q\nfi\n\n", userRC, userRC)
	}
	rc += hookScript

	path := filepath.Join(zdotdir, ".zshrc")
	if err := os.WriteFile(path, []byte(rc), 0o644); err != nil {
		return fmt.Errorf("write session zshrc: %w", err)
	}
	return nil
}
