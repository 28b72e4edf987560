package mirai

import (
	"context"
	"time"

	"github.com/liteclaw/mirai/pkg/message"
)

// MaxMuteDuration is the longest mute the gateway accepts.
const MaxMuteDuration = 30 * 24 * time.Hour

// Recall withdraws a message. The bot needs to be the author, or an
// administrator of the group the message was sent to.
func (s *Session) Recall(ctx context.Context, id message.MessageID) error {
	return s.post(ctx, "Recall", "/recall", map[string]any{"target": id}, nil)
}

// MuteAll mutes every member of a group.
func (s *Session) MuteAll(ctx context.Context, group message.Target) error {
	return s.post(ctx, "MuteAll", "/muteAll", map[string]any{"target": group}, nil)
}

// UnmuteAll lifts a group-wide mute.
func (s *Session) UnmuteAll(ctx context.Context, group message.Target) error {
	return s.post(ctx, "UnmuteAll", "/unmuteAll", map[string]any{"target": group}, nil)
}

// Mute mutes a member for d, which is truncated to whole seconds and must lie
// between one second and MaxMuteDuration.
func (s *Session) Mute(ctx context.Context, group, member message.Target, d time.Duration) error {
	const op = "Mute"

	if d < time.Second || d > MaxMuteDuration {
		return clientErrorf(op, "mute duration %s out of range [1s, %s]", d, MaxMuteDuration)
	}

	body := map[string]any{
		"target":   group,
		"memberId": member,
		"time":     int64(d / time.Second),
	}
	return s.post(ctx, op, "/mute", body, nil)
}

// Unmute lifts a member's mute.
func (s *Session) Unmute(ctx context.Context, group, member message.Target) error {
	body := map[string]any{
		"target":   group,
		"memberId": member,
	}
	return s.post(ctx, "Unmute", "/unmute", body, nil)
}
