package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/viewer"
	"github.com/user/termtrace/internal/workspace"
)

var viewListen string

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewListen, "listen", "", "listen address (defaults to http.listen from config)")
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Serve a read-only web view of recorded sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)

		listen := cfg.HTTP.Listen
		if viewListen != "" {
			listen = viewListen
		}

		manager := workspace.NewManager(filepath.Join(cfg.DataDir, "workspaces"))
		srv := &http.Server{
			Addr:    listen,
			Handler: viewer.NewServer(manager),
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			cancel()
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()

		fmt.Printf("Serving session viewer on http://%s\n", listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		slog.Info("viewer stopped")
		return nil
	},
}
