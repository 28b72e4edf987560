package message

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelKind is the kind of conversation a message is sent to.
type ChannelKind int

const (
	ChannelFriend ChannelKind = iota + 1
	ChannelGroup
	ChannelTemp
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelFriend:
		return "friend"
	case ChannelGroup:
		return "group"
	case ChannelTemp:
		return "temp"
	default:
		return "invalid"
	}
}

// Channel is the destination of a message: a friend, a group, or a
// temporary session with a group member.
type Channel struct {
	kind  ChannelKind
	qq    Target
	group Target
}

// FriendChannel returns the channel to a friend.
func FriendChannel(qq Target) Channel {
	return Channel{kind: ChannelFriend, qq: qq}
}

// GroupChannel returns the channel to a group.
func GroupChannel(group Target) Channel {
	return Channel{kind: ChannelGroup, group: group}
}

// TempChannel returns the temporary session with a member of group.
func TempChannel(qq, group Target) Channel {
	return Channel{kind: ChannelTemp, qq: qq, group: group}
}

// AsGroupChannel is implemented by values that identify a group channel.
type AsGroupChannel interface {
	GroupChannel() Channel
}

// AsFriendChannel is implemented by values that identify a friend channel.
type AsFriendChannel interface {
	FriendChannel() Channel
}

// AsTempChannel is implemented by values that identify a temporary session.
type AsTempChannel interface {
	TempChannel() Channel
}

// Kind returns the kind of the channel. The zero Channel is invalid.
func (c Channel) Kind() ChannelKind { return c.kind }

// IsValid reports whether the channel was built by one of the constructors.
func (c Channel) IsValid() bool {
	return c.kind >= ChannelFriend && c.kind <= ChannelTemp
}

// Group unwraps a group channel.
func (c Channel) Group() (Target, error) {
	if c.kind != ChannelGroup {
		return 0, &UnwrapError{Expected: ChannelGroup, Got: c.kind}
	}
	return c.group, nil
}

// Friend unwraps a friend channel.
func (c Channel) Friend() (Target, error) {
	if c.kind != ChannelFriend {
		return 0, &UnwrapError{Expected: ChannelFriend, Got: c.kind}
	}
	return c.qq, nil
}

// Temp unwraps a temporary session channel.
func (c Channel) Temp() (qq, group Target, err error) {
	if c.kind != ChannelTemp {
		return 0, 0, &UnwrapError{Expected: ChannelTemp, Got: c.kind}
	}
	return c.qq, c.group, nil
}

// String formats the channel as "friend:<qq>", "group:<id>" or
// "temp:<qq>@<group>". ParseChannel reverses it.
func (c Channel) String() string {
	switch c.kind {
	case ChannelFriend:
		return fmt.Sprintf("friend:%d", c.qq)
	case ChannelGroup:
		return fmt.Sprintf("group:%d", c.group)
	case ChannelTemp:
		return fmt.Sprintf("temp:%d@%d", c.qq, c.group)
	default:
		return "invalid"
	}
}

// ParseChannel parses the String form of a channel.
func ParseChannel(s string) (Channel, error) {
	kind, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Channel{}, fmt.Errorf("invalid channel %q: missing kind prefix", s)
	}

	switch kind {
	case "friend":
		qq, err := parseTarget(rest)
		if err != nil {
			return Channel{}, fmt.Errorf("invalid channel %q: %w", s, err)
		}
		return FriendChannel(qq), nil
	case "group":
		group, err := parseTarget(rest)
		if err != nil {
			return Channel{}, fmt.Errorf("invalid channel %q: %w", s, err)
		}
		return GroupChannel(group), nil
	case "temp":
		qqStr, groupStr, ok := strings.Cut(rest, "@")
		if !ok {
			return Channel{}, fmt.Errorf("invalid channel %q: temp channel needs <qq>@<group>", s)
		}
		qq, err := parseTarget(qqStr)
		if err != nil {
			return Channel{}, fmt.Errorf("invalid channel %q: %w", s, err)
		}
		group, err := parseTarget(groupStr)
		if err != nil {
			return Channel{}, fmt.Errorf("invalid channel %q: %w", s, err)
		}
		return TempChannel(qq, group), nil
	default:
		return Channel{}, fmt.Errorf("invalid channel %q: unknown kind %q", s, kind)
	}
}

// ParseTarget parses a decimal account or group id.
func ParseTarget(s string) (Target, error) {
	return parseTarget(s)
}

func parseTarget(s string) (Target, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return Target(n), nil
}
