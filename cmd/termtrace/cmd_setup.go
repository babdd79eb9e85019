package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/config"
	"github.com/user/termtrace/pkg/llm"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("termtrace Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		cfg.Shell.Command = prompt(scanner, "Shell", cfg.Shell.Command)
		cfg.Shell.RCFile = prompt(scanner, "Shell rc file", cfg.Shell.RCFile)

		cfg.Summarize.Mode = prompt(scanner, "Summarize mode (markdown/llm)", cfg.Summarize.Mode)
		batchStr := prompt(scanner, "Summary batch size", strconv.Itoa(cfg.Summarize.BatchSize))
		if n, err := strconv.Atoi(batchStr); err == nil && n > 0 {
			cfg.Summarize.BatchSize = n
		}

		if cfg.Summarize.Mode == "llm" {
			cfg.LLM.Provider = prompt(scanner, "LLM provider (openai/github/huggingface)", cfg.LLM.Provider)
			cfg.LLM.APIKey = prompt(scanner, "LLM API key", cfg.LLM.APIKey)
			cfg.LLM.Model = prompt(scanner, "LLM model name", cfg.LLM.Model)
		}

		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)
		if cfg.Telegram.Token != "" {
			chatStr := prompt(scanner, "Telegram chat ID", strconv.FormatInt(cfg.Telegram.ChatID, 10))
			if id, err := strconv.ParseInt(chatStr, 10, 64); err == nil {
				cfg.Telegram.ChatID = id
			}
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)

		// Verify LLM connectivity when the provider supports it.
		if cfg.Summarize.Mode == "llm" && cfg.LLM.APIKey != "" {
			provider, err := buildProvider(cfg)
			if err != nil {
				return err
			}
			if pinger, ok := provider.(llm.Pinger); ok {
				fmt.Print("Testing LLM connection... ")
				if err := pinger.Ping(context.Background()); err != nil {
					fmt.Println("failed")
					fmt.Fprintf(os.Stderr, "  %v\n", err)
				} else {
					fmt.Println("ok")
				}
			}
		}
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}
