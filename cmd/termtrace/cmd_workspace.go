package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/state"
	"github.com/user/termtrace/internal/types"
	"github.com/user/termtrace/internal/workspace"
)

func init() {
	rootCmd.AddCommand(workspaceCmd)
	workspaceCmd.AddCommand(workspaceListCmd, workspaceCreateCmd, workspaceRemoveCmd)
}

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Manage workspaces",
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))

		manifests, err := manager.List()
		if err != nil {
			return fmt.Errorf("list workspaces: %w", err)
		}
		if len(manifests) == 0 {
			fmt.Println("No workspaces found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSESSIONS\tMODE\tCREATED")
		for _, m := range manifests {
			sessions := state.NewSessionStore(manager.Dir(m.Name))
			list, err := sessions.List()
			if err != nil {
				list = nil
			}
			mode := m.Summarize.Mode
			if mode == "" {
				mode = cfg.Summarize.Mode
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				m.Name,
				len(list),
				mode,
				m.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))

		manifest, err := manager.Ensure(types.WorkspaceName(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("Workspace %s ready at %s\n", manifest.Name, manager.Dir(manifest.Name))
		return nil
	},
}

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a workspace and all its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))

		if err := manager.Remove(types.WorkspaceName(args[0])); err != nil {
			return err
		}
		fmt.Printf("Workspace %s removed.\n", args[0])
		return nil
	},
}
