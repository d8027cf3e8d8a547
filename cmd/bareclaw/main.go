// Command bareclaw is the entry point for the BareClaw agent runtime: a
// REPL, channel adapters (Discord, Telegram), an HTTP gateway, and a
// cron task scheduler, all driven by one agent loop.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bareclaw",
		Short:        "A self-hostable runtime for tool-using LLM agents",
		SilenceUsage: true,
	}
	root.AddCommand(
		buildReplCmd(),
		buildDiscordCmd(),
		buildTelegramCmd(),
		buildServeCmd(),
		buildCronCmd(),
	)
	return root
}
