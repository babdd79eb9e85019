package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/pkg/llm"
)

// Mode selects how a batch of records is turned into a summary.
type Mode string

const (
	// ModeMarkdown produces a deterministic digest with no LLM involved.
	ModeMarkdown Mode = "markdown"
	// ModeLLM sends the batch to a provider for summarization.
	ModeLLM Mode = "llm"
)

const systemPrompt = "You summarize terminal session activity. Given a sequence " +
	"of shell commands with their output and user notes, produce a short prose " +
	"summary of what was done and what the results were."

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Options configures a Summarizer.
type Options struct {
	Mode      Mode
	BatchSize int
	// Schedule is an optional cron expression that flushes whatever is
	// buffered, even below the batch size.
	Schedule string
	// Title is written as a Markdown header when the summary file is
	// first created.
	Title string
	// Provider and Budget are required for ModeLLM.
	Provider llm.Provider
	Budget   *Budget
	// Notify, when set, receives each written summary for delivery.
	Notify func(summary string)
}

// Summarizer tails a session log in the background and appends batch
// summaries to a Markdown file.
type Summarizer struct {
	log         *state.Log
	summaryPath string
	opts        Options

	mu     sync.Mutex
	offset int64
	buffer []*types.Record

	cron *cron.Cron
	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a Summarizer for the given session log. The summary file is
// created with a title header if it does not already exist.
func New(log *state.Log, summaryPath string, opts Options) (*Summarizer, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 5
	}
	if opts.Mode == ModeLLM && opts.Provider == nil {
		return nil, fmt.Errorf("llm mode requires a provider")
	}

	if err := os.MkdirAll(filepath.Dir(summaryPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating summary directory: %w", err)
	}
	if _, err := os.Stat(summaryPath); os.IsNotExist(err) {
		title := opts.Title
		if title == "" {
			title = "termtrace session"
		}
		if err := os.WriteFile(summaryPath, []byte("# "+title+"\n\n"), 0o644); err != nil {
			return nil, fmt.Errorf("creating summary file: %w", err)
		}
	}

	return &Summarizer{
		log:         log,
		summaryPath: summaryPath,
		opts:        opts,
		done:        make(chan struct{}),
	}, nil
}

// Start launches the background tailer and, if a schedule is configured,
// the cron ticker.
func (s *Summarizer) Start() error {
	if s.opts.Schedule != "" {
		s.cron = cron.New(cron.WithParser(cronParser))
		if _, err := s.cron.AddFunc(s.opts.Schedule, func() {
			if err := s.Flush(); err != nil {
				slog.Error("scheduled flush failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid summarize schedule %q: %w", s.opts.Schedule, err)
		}
		s.cron.Start()
	}

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop halts the tailer, drains any remaining log entries, and flushes the
// buffer one last time.
func (s *Summarizer) Stop() {
	close(s.done)
	s.wg.Wait()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.poll()
	if err := s.Flush(); err != nil {
		slog.Error("final flush failed", "error", err)
	}
}

// RunOnce drains the whole log and flushes a single batch. Used for
// on-demand summarization without the background tailer.
func (s *Summarizer) RunOnce() error {
	s.poll()
	return s.Flush()
}

func (s *Summarizer) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.poll()
			s.mu.Lock()
			ready := len(s.buffer) >= s.opts.BatchSize
			s.mu.Unlock()
			if ready {
				if err := s.Flush(); err != nil {
					slog.Error("batch flush failed", "error", err)
				}
			}
		}
	}
}

// poll reads any new complete lines from the log into the buffer.
func (s *Summarizer) poll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, offset, err := s.log.ReadFrom(s.offset)
	if err != nil {
		slog.Warn("reading session log", "error", err)
		return
	}
	s.offset = offset
	s.buffer = append(s.buffer, records...)
}

// Flush summarizes whatever is buffered and appends the result to the
// summary file. A nil error is returned when the buffer was empty.
func (s *Summarizer) Flush() error {
	s.mu.Lock()
	batch := s.buffer
	s.buffer = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	summary := s.summarize(batch)
	if err := s.appendSummary(summary); err != nil {
		// Put the batch back so a later flush can retry.
		s.mu.Lock()
		s.buffer = append(batch, s.buffer...)
		s.mu.Unlock()
		return err
	}

	if s.opts.Notify != nil {
		s.opts.Notify(summary)
	}
	return nil
}

func (s *Summarizer) summarize(batch []*types.Record) string {
	if s.opts.Mode == ModeLLM {
		summary, err := s.completeLLM(batch)
		if err == nil {
			return summary
		}
		slog.Error("llm summarization failed, using digest", "error", err)
	}
	return RenderDigest(batch)
}

func (s *Summarizer) completeLLM(batch []*types.Record) (string, error) {
	blocks := PromptBlocks(batch)
	var prompt string
	if s.opts.Budget != nil {
		prompt = s.opts.Budget.FitRecent(blocks)
	} else {
		prompt = strings.Join(blocks, "\n\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	resp, err := s.opts.Provider.Complete(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary from provider")
	}
	return summary, nil
}

func (s *Summarizer) appendSummary(summary string) error {
	f, err := os.OpenFile(s.summaryPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening summary file: %w", err)
	}
	if _, err := f.WriteString(summary + "\n\n"); err != nil {
		f.Close()
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing summary file: %w", err)
	}
	return nil
}
