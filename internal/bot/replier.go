// Package bot runs a mirai bot: it keeps a session open, answers messages
// from configured reply rules and sends scheduled messages.
package bot

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/liteclaw/mirai/internal/channels"
	"github.com/liteclaw/mirai/internal/config"
)

// Sender delivers outbound messages. *channels.Registry implements it.
type Sender interface {
	Send(ctx context.Context, req *channels.SendRequest) (*channels.SendResult, error)
}

// Replier answers incoming messages whose trimmed text exactly matches a
// reply rule. It is safe to swap rules while messages are handled.
type Replier struct {
	sender Sender
	rules  atomic.Pointer[map[string]config.ReplyRule]
	logger zerolog.Logger
}

// NewReplier creates a replier sending through sender.
func NewReplier(sender Sender, rules []config.ReplyRule, logger zerolog.Logger) *Replier {
	r := &Replier{
		sender: sender,
		logger: logger.With().Str("component", "replier").Logger(),
	}
	r.SetRules(rules)
	return r
}

// SetRules replaces the reply rules.
func (r *Replier) SetRules(rules []config.ReplyRule) {
	m := make(map[string]config.ReplyRule, len(rules))
	for _, rule := range rules {
		m[strings.TrimSpace(rule.Match)] = rule
	}
	r.rules.Store(&m)
	r.logger.Info().Int("rules", len(m)).Msg("Reply rules updated")
}

// Match returns the rule for text, if any.
func (r *Replier) Match(text string) (config.ReplyRule, bool) {
	rules := r.rules.Load()
	if rules == nil {
		return config.ReplyRule{}, false
	}
	rule, ok := (*rules)[strings.TrimSpace(text)]
	return rule, ok
}

// HandleIncoming implements channels.MessageHandler.
func (r *Replier) HandleIncoming(ctx context.Context, msg *channels.IncomingMessage) error {
	rule, ok := r.Match(msg.Text)
	if !ok {
		return nil
	}

	req := msg.Reply(rule.Reply)
	if !rule.Quote {
		req.ReplyTo = ""
	}

	r.logger.Info().
		Str("chat", msg.ChatID).
		Str("match", rule.Match).
		Msg("Answering message")

	_, err := r.sender.Send(ctx, req)
	return err
}
