package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/liteclaw/mirai/pkg/message"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	kindStyle   = lipgloss.NewStyle().Foreground(highlight).Bold(true)
	senderStyle = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(subtle)
)

// formatEvent renders an event as a single line.
func formatEvent(ev message.Event) string {
	kind := kindStyle.Render("[" + ev.EventType() + "]")
	return kind + " " + describeEvent(ev)
}

func describeEvent(ev message.Event) string {
	switch e := ev.(type) {
	case message.GroupMessage:
		return fmt.Sprintf("%s %s %s", member(e.Sender), subtleStyle.Render("in "+group(e.Sender.Group)+":"), content(e))
	case message.FriendMessage:
		name := fmt.Sprintf("%s(%d)", e.Sender.DisplayName(), e.Sender.ID)
		return senderStyle.Render(name) + ": " + content(e)
	case message.TempMessage:
		return fmt.Sprintf("%s %s %s", member(e.Sender), subtleStyle.Render("via "+group(e.Sender.Group)+":"), content(e))

	case message.GroupRecallEvent:
		by := "the bot"
		if e.Operator != nil {
			by = member(*e.Operator)
		}
		return fmt.Sprintf("message %d from %d recalled by %s in %s", e.MessageID, e.AuthorID, by, group(e.Group))
	case message.FriendRecallEvent:
		return fmt.Sprintf("message %d from %d recalled by %d", e.MessageID, e.AuthorID, e.Operator)

	case message.BotLoginEvent:
		return fmt.Sprintf("bot %d", e.QQ)
	case message.BotGroupPermissionChangeEvent:
		return fmt.Sprintf("bot permission %s -> %s in %s", e.Origin, e.Current, group(e.Group))
	case message.BotMuteEvent:
		d := time.Duration(e.DurationSeconds) * time.Second
		return fmt.Sprintf("bot muted for %s by %s in %s", d, member(e.Operator), group(e.Operator.Group))
	case message.BotUnmuteEvent:
		return fmt.Sprintf("bot unmuted by %s in %s", member(e.Operator), group(e.Operator.Group))
	case message.BotGroupEvent:
		return group(e.Group)
	case message.GroupChangeEvent:
		by := "the bot"
		if e.Operator != nil {
			by = member(*e.Operator)
		}
		return fmt.Sprintf("%q -> %q by %s in %s", e.Origin, e.Current, by, group(e.Group))

	case message.UnsupportedEvent:
		detail := strings.TrimSpace(string(e.Raw))
		if e.Err != nil {
			detail = e.Err.Error() + ": " + detail
		}
		return subtleStyle.Render(detail)
	}
	return subtleStyle.Render(fmt.Sprintf("%+v", ev))
}

func content(e message.MessageEvent) string {
	msg := e.Content()
	if id, ok := msg.ID(); ok {
		return msg.String() + " " + subtleStyle.Render(fmt.Sprintf("#%d", id))
	}
	return msg.String()
}

func member(m message.GroupMember) string {
	return senderStyle.Render(fmt.Sprintf("%s(%d)", m.MemberName, m.ID))
}

func group(g message.Group) string {
	return fmt.Sprintf("%s(%d)", g.Name, g.ID)
}
