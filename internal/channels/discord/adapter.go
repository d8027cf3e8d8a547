// Package discord is a thin Discord gateway adapter: every non-bot
// message in a channel the bot can see becomes one agent turn, whose
// reply is sent back to the same channel.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/Jaruso/bareclaw/internal/mcp"
)

// Adapter owns one Discord session and one agent-turn context per
// channel ID for its entire lifetime: history and the capability-proxy
// session pool are never shared across channels.
type Adapter struct {
	session *discordgo.Session
	deps    agent.Deps
	logger  *slog.Logger

	histories map[string]*agent.ConversationHistory
	sessions  map[string]*mcp.SessionPool
}

// New creates a Discord session for token but does not yet open it.
func New(token string, deps agent.Deps) (*Adapter, error) {
	if token == "" {
		return nil, fmt.Errorf("discord: token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: new session: %w", err)
	}
	a := &Adapter{
		session:   session,
		deps:      deps,
		logger:    slog.Default().With("adapter", "discord"),
		histories: make(map[string]*agent.ConversationHistory),
		sessions:  make(map[string]*mcp.SessionPool),
	}
	session.AddHandler(a.handleMessageCreate)
	return a, nil
}

// Run opens the Discord gateway connection and blocks until ctx is
// cancelled, then closes the session.
func (a *Adapter) Run(ctx context.Context) error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	a.logger.Info("discord adapter connected")
	<-ctx.Done()
	return a.session.Close()
}

func (a *Adapter) historyFor(channelID string) *agent.ConversationHistory {
	if h, ok := a.histories[channelID]; ok {
		return h
	}
	h := agent.NewConversationHistory()
	a.histories[channelID] = h
	return h
}

// depsFor returns a.deps with ToolContext.Sessions swapped for a pool
// owned exclusively by channelID, creating one on first use. Policy,
// audit log, and memory remain shared across channels; only the
// capability-proxy session pool is per-channel, per the no-shared-state
// rule between channels.
func (a *Adapter) depsFor(channelID string) agent.Deps {
	pool, ok := a.sessions[channelID]
	if !ok {
		pool = mcp.NewSessionPool()
		a.sessions[channelID] = pool
	}
	deps := a.deps
	if deps.ToolContext != nil {
		toolCtx := *deps.ToolContext
		toolCtx.Sessions = pool
		deps.ToolContext = &toolCtx
	}
	return deps
}

func (a *Adapter) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.Content == "" {
		return
	}

	history := a.historyFor(m.ChannelID)
	history.Append(agent.Message{Role: agent.RoleUser, Content: m.Content})

	deps := a.depsFor(m.ChannelID)
	reply, err := agent.Run(context.Background(), deps, m.Content, nil)
	if err != nil {
		a.logger.Error("agent turn failed", "channel_id", m.ChannelID, "err", err)
		reply = "Sorry, something went wrong handling that."
	}
	history.Append(agent.Message{Role: agent.RoleAssistant, Content: reply})

	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		a.logger.Error("failed to send discord reply", "channel_id", m.ChannelID, "err", err)
	}
}
