package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

var noteWorkspace string

func init() {
	rootCmd.AddCommand(noteCmd)
	noteCmd.Flags().StringVarP(&noteWorkspace, "workspace", "w", "default", "workspace holding the session")
}

var noteCmd = &cobra.Command{
	Use:   "note <text>...",
	Short: "Append a note to the latest session",
	Long: `Note records an annotation in the most recent session of a workspace
without running a command. Useful from scripts or other terminals while
a traced session is live.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))
		sessions := state.NewSessionStore(manager.Dir(types.WorkspaceName(noteWorkspace)))
		sess, err := sessions.Latest()
		if err != nil {
			return fmt.Errorf("no sessions in workspace %s: %w", noteWorkspace, err)
		}

		text := strings.Join(args, " ")
		line := text
		if !strings.HasPrefix(strings.TrimLeft(line, " \t"), types.NoteMarker) {
			line = types.NoteMarker + " " + text
		}
		if err := state.AppendEntry(sess.LogPath, time.Now(), line, "", 0); err != nil {
			return fmt.Errorf("append note: %w", err)
		}

		fmt.Printf("Noted in session %s.\n", sess.SessionID)
		return nil
	},
}
