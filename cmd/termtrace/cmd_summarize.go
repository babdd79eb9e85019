package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/termtrace/internal/config"
	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

var (
	summarizeAll  bool
	summarizeMode string
)

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().BoolVar(&summarizeAll, "all", false, "summarize every workspace")
	summarizeCmd.Flags().StringVar(&summarizeMode, "mode", "", "summarization mode: markdown or llm")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [workspace]",
	Short: "Summarize recorded sessions on demand",
	Long: `Summarize replays the session logs of a workspace through the
summarizer and appends the result to the workspace summary file. With
--all, every workspace is processed, a few at a time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(cfg)
	startMode = summarizeMode // reuse the summarizer assembly overrides

	manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))

	if summarizeAll {
		manifests, err := manager.List()
		if err != nil {
			return fmt.Errorf("list workspaces: %w", err)
		}
		var g errgroup.Group
		g.SetLimit(4)
		for _, manifest := range manifests {
			g.Go(func() error {
				return summarizeWorkspace(cfg, manager, manifest)
			})
		}
		return g.Wait()
	}

	wsName := types.WorkspaceName("default")
	if len(args) == 1 {
		wsName = types.WorkspaceName(args[0])
	}
	manifest, err := manager.Ensure(wsName)
	if err != nil {
		return fmt.Errorf("ensure workspace: %w", err)
	}
	return summarizeWorkspace(cfg, manager, manifest)
}

func summarizeWorkspace(cfg *config.Config, manager *workspace.Manager, manifest *workspace.Manifest) error {
	sessions := state.NewSessionStore(manager.Dir(manifest.Name))
	list, err := sessions.List()
	if err != nil {
		return fmt.Errorf("list sessions in %s: %w", manifest.Name, err)
	}

	var summarized int
	for _, sess := range list {
		if sess.Status == types.StatusArchived {
			continue
		}
		log := state.NewLog(sess.LogPath)
		count, err := log.Count()
		if err != nil || count == 0 {
			continue
		}

		s, err := buildSummarizer(cfg, manifest, manager, log)
		if err != nil {
			return err
		}
		if err := s.RunOnce(); err != nil {
			return fmt.Errorf("summarize session %s: %w", sess.SessionID, err)
		}
		summarized++
	}

	fmt.Printf("Workspace %s: summarized %d of %d sessions into %s\n",
		manifest.Name, summarized, len(list), manager.SummaryPath(manifest.Name))
	return nil
}
