package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/termtrace/internal/config"
	"github.com/user/termtrace/pkg/llm"
	"github.com/user/termtrace/pkg/llm/huggingface"
	"github.com/user/termtrace/pkg/llm/openai"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "termtrace",
	Short: "Capture, annotate, and summarize terminal sessions",
	Long: `termtrace wraps your shell and records every command, its output,
and its exit code into an append-only JSONL session log. Lines starting
with # become annotations instead of commands. A background summarizer
turns batches of entries into Markdown or LLM-written summaries.`,
	SilenceUsage: true,
}

func init() {
	defaultConfig := filepath.Join(os.Getenv("HOME"), ".termtrace", "config.json")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfig, "config file path")
}

// loadConfig loads the config or exits. Commands call this after flag
// parsing so --config is already bound.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildProvider constructs the LLM client selected by the config. The
// github provider speaks the OpenAI wire format at a different base URL;
// huggingface gets the model name appended to the endpoint.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	llmCfg := &llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}

	switch cfg.LLM.Provider {
	case "openai":
		return openai.New(llmCfg), nil
	case "github":
		if llmCfg.BaseURL == config.OpenAIBaseURL {
			llmCfg.BaseURL = config.GitHubModelsURL
		}
		if llmCfg.Model == "gpt-3.5-turbo" {
			llmCfg.Model = config.DefaultGitHubModel
		}
		return openai.New(llmCfg), nil
	case "huggingface":
		if llmCfg.Model == "gpt-3.5-turbo" {
			llmCfg.Model = config.DefaultHFModel
		}
		if llmCfg.BaseURL == config.OpenAIBaseURL {
			llmCfg.BaseURL = config.HuggingFaceURL + "/" + llmCfg.Model
		}
		return huggingface.New(llmCfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
