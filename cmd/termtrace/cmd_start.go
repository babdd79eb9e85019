package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/config"
	"github.com/user/termtrace/internal/delivery"
	"github.com/user/termtrace/internal/shell"
	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/summarize"
	"github.com/user/termtrace/internal/telegram"
	"github.com/user/termtrace/internal/trace"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

var (
	startSessionName string
	startMode        string
	startBatchSize   int
	startSchedule    string
	startNoSummary   bool
)

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVar(&startSessionName, "name", "", "session name (defaults to a timestamped name)")
	startCmd.Flags().StringVar(&startMode, "mode", "", "summarization mode: markdown or llm (overrides workspace setting)")
	startCmd.Flags().IntVar(&startBatchSize, "batch-size", 0, "entries per summary batch (overrides workspace setting)")
	startCmd.Flags().StringVar(&startSchedule, "schedule", "", "cron expression for time-based flushes (overrides workspace setting)")
	startCmd.Flags().BoolVar(&startNoSummary, "no-summary", false, "disable live summarization")
}

var startCmd = &cobra.Command{
	Use:   "start [workspace]",
	Short: "Start a traced shell session",
	Long: `Start launches an interactive shell inside a pty. Every command you
run is recorded with its output and exit code; lines starting with #
are recorded as notes. Recording survives nothing fancier than your
normal shell: exit it to end the session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)

	wsName := types.WorkspaceName("default")
	if len(args) == 1 {
		wsName = types.WorkspaceName(args[0])
	}

	manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))
	manifest, err := manager.Ensure(wsName)
	if err != nil {
		return fmt.Errorf("ensure workspace: %w", err)
	}

	sessions := state.NewSessionStore(manager.Dir(wsName))
	sess, err := sessions.Create(wsName, startSessionName)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log := state.NewLog(sess.LogPath)

	var summarizer *summarize.Summarizer
	if !startNoSummary {
		summarizer, err = buildSummarizer(cfg, manifest, manager, log)
		if err != nil {
			return err
		}
		if err := summarizer.Start(); err != nil {
			return fmt.Errorf("start summarizer: %w", err)
		}
	}

	channel := trace.NewChannel(os.TempDir())
	detector := trace.NewDetector(channel, log)
	runner := &shell.Runner{
		Shell:   cfg.Shell.Command,
		RCFile:  cfg.Shell.RCFile,
		Handler: shell.NewHandler(detector, log),
		Channel: channel,
	}

	fmt.Printf("Recording session %s in workspace %s. Exit the shell to stop.\n", sess.SessionID, wsName)

	runErr := runner.Run(cmd.Context())

	if summarizer != nil {
		summarizer.Stop()
	}

	sess.Status = types.StatusEnded
	sess.UpdatedAt = time.Now()
	if err := sessions.Update(sess); err != nil {
		slog.Warn("updating session status", "error", err)
	}

	fmt.Printf("Session ended.\n  log:     %s\n  summary: %s\n", sess.LogPath, manager.SummaryPath(wsName))
	return runErr
}

// buildSummarizer assembles the live summarizer for a session. Workspace
// manifest settings override the global config; command flags override
// both. LLM mode quietly degrades to markdown when no API key is set.
func buildSummarizer(cfg *config.Config, manifest *workspace.Manifest, manager *workspace.Manager, log *state.Log) (*summarize.Summarizer, error) {
	mode := cfg.Summarize.Mode
	if manifest.Summarize.Mode != "" {
		mode = manifest.Summarize.Mode
	}
	if startMode != "" {
		mode = startMode
	}

	batchSize := cfg.Summarize.BatchSize
	if manifest.Summarize.BatchSize > 0 {
		batchSize = manifest.Summarize.BatchSize
	}
	if startBatchSize > 0 {
		batchSize = startBatchSize
	}

	schedule := cfg.Summarize.Schedule
	if manifest.Summarize.Schedule != "" {
		schedule = manifest.Summarize.Schedule
	}
	if startSchedule != "" {
		schedule = startSchedule
	}

	opts := summarize.Options{
		BatchSize: batchSize,
		Schedule:  schedule,
		Title:     fmt.Sprintf("termtrace: %s", manifest.Name),
	}

	switch mode {
	case "llm":
		if cfg.LLM.APIKey == "" {
			slog.Warn("no LLM API key configured, falling back to markdown summaries")
			opts.Mode = summarize.ModeMarkdown
			break
		}
		provider, err := buildProvider(cfg)
		if err != nil {
			return nil, err
		}
		budget, err := summarize.NewBudget(cfg.LLM.Model, cfg.LLM.MaxContextTokens)
		if err != nil {
			return nil, fmt.Errorf("create token budget: %w", err)
		}
		opts.Mode = summarize.ModeLLM
		opts.Provider = provider
		opts.Budget = budget
	case "markdown":
		opts.Mode = summarize.ModeMarkdown
	default:
		return nil, fmt.Errorf("unknown summarize mode: %s", mode)
	}

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		reg := delivery.NewRegistry()
		notifier, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("create telegram notifier: %w", err)
		}
		reg.Register("telegram:", func(target, summary string) error {
			return notifier.Send(summary)
		})
		target := fmt.Sprintf("telegram:%d", cfg.Telegram.ChatID)
		opts.Notify = func(summary string) {
			if err := reg.Deliver(target, summary); err != nil {
				slog.Error("summary delivery failed", "target", target, "error", err)
			}
		}
	}

	return summarize.New(log, manager.SummaryPath(manifest.Name), opts)
}
