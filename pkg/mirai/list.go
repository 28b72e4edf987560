package mirai

import (
	"context"
	"strconv"

	"github.com/liteclaw/mirai/pkg/message"
)

// FriendList returns the friends of the bound bot.
func (s *Session) FriendList(ctx context.Context) ([]message.Friend, error) {
	var friends []message.Friend
	if err := s.get(ctx, "FriendList", "/friendList", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// GroupList returns the groups the bound bot is a member of.
func (s *Session) GroupList(ctx context.Context) ([]message.Group, error) {
	var groups []message.Group
	if err := s.get(ctx, "GroupList", "/groupList", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// MemberList returns the members of a group, excluding the bot itself.
func (s *Session) MemberList(ctx context.Context, group message.Target) ([]message.GroupMember, error) {
	var members []message.GroupMember
	query := map[string]string{"target": strconv.FormatUint(uint64(group), 10)}
	if err := s.get(ctx, "MemberList", "/memberList", query, &members); err != nil {
		return nil, err
	}
	return members, nil
}
