package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Jaruso/bareclaw/internal/channels/discord"
	"github.com/Jaruso/bareclaw/internal/channels/telegram"
	"github.com/spf13/cobra"
)

func buildDiscordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discord",
		Short: "Run the Discord gateway adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			if rt.cfg.DiscordToken == "" {
				return fmt.Errorf("bareclaw: discord_token is not configured")
			}
			adapter, err := discord.New(rt.cfg.DiscordToken, rt.agentDeps)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return adapter.Run(ctx)
		},
	}
}

func buildTelegramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram long-polling adapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime()
			if err != nil {
				return err
			}
			if rt.cfg.TelegramToken == "" {
				return fmt.Errorf("bareclaw: telegram_token is not configured")
			}
			adapter, err := telegram.New(rt.cfg.TelegramToken, rt.agentDeps)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return adapter.Run(ctx)
		},
	}
}
