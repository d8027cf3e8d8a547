// Package telegram is a thin long-polling Telegram gateway adapter:
// every incoming text update becomes one agent turn, whose reply is
// sent back to the originating chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/Jaruso/bareclaw/internal/mcp"
)

// Adapter owns one long-polling bot client and, per chat ID, one
// ConversationHistory and one capability-proxy session pool for its
// entire lifetime.
type Adapter struct {
	bot    *bot.Bot
	deps   agent.Deps
	logger *slog.Logger

	histories map[int64]*agent.ConversationHistory
	sessions  map[int64]*mcp.SessionPool
}

// New creates a long-polling bot client for token, registering the
// default update handler.
func New(token string, deps agent.Deps) (*Adapter, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	a := &Adapter{
		deps:      deps,
		logger:    slog.Default().With("adapter", "telegram"),
		histories: make(map[int64]*agent.ConversationHistory),
		sessions:  make(map[int64]*mcp.SessionPool),
	}
	b, err := bot.New(token, bot.WithDefaultHandler(a.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	a.bot = b
	return a, nil
}

// Run starts long-polling and blocks until ctx is cancelled.
func (a *Adapter) Run(ctx context.Context) error {
	a.logger.Info("telegram adapter connected")
	a.bot.Start(ctx)
	return nil
}

func (a *Adapter) historyFor(chatID int64) *agent.ConversationHistory {
	if h, ok := a.histories[chatID]; ok {
		return h
	}
	h := agent.NewConversationHistory()
	a.histories[chatID] = h
	return h
}

// depsFor returns a.deps with ToolContext.Sessions swapped for a pool
// owned exclusively by chatID, mirroring the Discord adapter's
// per-channel isolation rule.
func (a *Adapter) depsFor(chatID int64) agent.Deps {
	pool, ok := a.sessions[chatID]
	if !ok {
		pool = mcp.NewSessionPool()
		a.sessions[chatID] = pool
	}
	deps := a.deps
	if deps.ToolContext != nil {
		toolCtx := *deps.ToolContext
		toolCtx.Sessions = pool
		deps.ToolContext = &toolCtx
	}
	return deps
}

func (a *Adapter) handleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	history := a.historyFor(chatID)
	history.Append(agent.Message{Role: agent.RoleUser, Content: update.Message.Text})

	deps := a.depsFor(chatID)
	reply, err := agent.Run(ctx, deps, update.Message.Text, nil)
	if err != nil {
		a.logger.Error("agent turn failed", "chat_id", chatID, "err", err)
		reply = "Sorry, something went wrong handling that."
	}
	history.Append(agent.Message{Role: agent.RoleAssistant, Content: reply})

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
	if err != nil {
		a.logger.Error("failed to send telegram reply", "chat_id", chatID, "err", err)
	}
}
