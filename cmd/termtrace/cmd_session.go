package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/config"
	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

var sessionWorkspace string

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.PersistentFlags().StringVarP(&sessionWorkspace, "workspace", "w", "default", "workspace holding the sessions")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionArchiveCmd, sessionClearCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage recorded sessions",
}

func sessionStore(cfg *config.Config) (*state.SessionStore, *workspace.Manager) {
	manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))
	return state.NewSessionStore(manager.Dir(types.WorkspaceName(sessionWorkspace))), manager
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions in a workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions, _ := sessionStore(cfg)

		list, err := sessions.List()
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tRECORDS\tCREATED")
		for _, s := range list {
			count, err := state.NewLog(s.LogPath).Count()
			if err != nil {
				count = 0
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				s.SessionID,
				s.Name,
				s.Status,
				count,
				s.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the records of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions, _ := sessionStore(cfg)

		sess, err := sessions.Get(types.SessionID(args[0]))
		if err != nil {
			return err
		}

		var records []*types.Record
		if sess.Status == types.StatusArchived {
			data, err := state.ReadArchived(sess.LogPath + ".zst")
			if err != nil {
				return fmt.Errorf("read archived session: %w", err)
			}
			records = state.ParseRecords(data)
		} else {
			records, err = state.NewLog(sess.LogPath).ReadAll()
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}
		}

		for _, r := range records {
			switch r.Type {
			case types.RecordNote:
				fmt.Printf("[%s] # %s\n", r.Timestamp, r.Text)
			case types.RecordCommand:
				fmt.Printf("[%s] $ %s (exit %d)\n", r.Timestamp, r.Command, r.ExitCode)
				if r.Output != "" {
					fmt.Print(r.Output)
					if r.Output[len(r.Output)-1] != '\n' {
						fmt.Println()
					}
				}
			}
		}
		return nil
	},
}

var sessionArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Compress an ended session log",
	Long: `Archive compresses the session log with zstd, writes a BLAKE2b
checksum sidecar, and removes the original. Archived sessions stay
readable through show and the viewer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions, _ := sessionStore(cfg)

		sess, err := sessions.Get(types.SessionID(args[0]))
		if err != nil {
			return err
		}
		if sess.Status == types.StatusActive {
			return fmt.Errorf("session %s is still active", sess.SessionID)
		}
		if sess.Status == types.StatusArchived {
			return fmt.Errorf("session %s is already archived", sess.SessionID)
		}

		archivePath, err := state.Archive(sess.LogPath)
		if err != nil {
			return fmt.Errorf("archive session: %w", err)
		}

		sess.Status = types.StatusArchived
		sess.UpdatedAt = time.Now()
		if err := sessions.Update(sess); err != nil {
			return fmt.Errorf("update session: %w", err)
		}

		fmt.Printf("Archived %s to %s\n", sess.SessionID, archivePath)
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <id|all>",
	Short: "Delete a session or all sessions in a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		sessions, _ := sessionStore(cfg)

		if args[0] == "all" {
			list, err := sessions.List()
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			for _, s := range list {
				if err := sessions.Remove(s.SessionID); err != nil {
					return fmt.Errorf("remove session %s: %w", s.SessionID, err)
				}
			}
			fmt.Printf("Cleared %d sessions.\n", len(list))
			return nil
		}

		if err := sessions.Remove(types.SessionID(args[0])); err != nil {
			return err
		}
		fmt.Printf("Session %s cleared.\n", args[0])
		return nil
	},
}
