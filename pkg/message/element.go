package message

// Permission is a member's role in a group.
type Permission string

const (
	PermissionOwner         Permission = "OWNER"
	PermissionAdministrator Permission = "ADMINISTRATOR"
	PermissionMember        Permission = "MEMBER"
)

// CanManage reports whether the role may mute members and recall messages.
func (p Permission) CanManage() bool {
	return p == PermissionOwner || p == PermissionAdministrator
}

// Group is a QQ group as seen by the bot. Permission is the bot's own role.
type Group struct {
	ID         Target     `json:"id"`
	Name       string     `json:"name"`
	Permission Permission `json:"permission"`
}

// Equal compares groups by id.
func (g Group) Equal(o Group) bool { return g.ID == o.ID }

// GroupChannel returns the group channel.
func (g Group) GroupChannel() Channel { return GroupChannel(g.ID) }

// GroupMember is a member of a group.
type GroupMember struct {
	ID         Target     `json:"id"`
	MemberName string     `json:"memberName"`
	Permission Permission `json:"permission"`
	Group      Group      `json:"group"`
}

// Equal compares members by id and group id.
func (m GroupMember) Equal(o GroupMember) bool {
	return m.ID == o.ID && m.Group.ID == o.Group.ID
}

// GroupChannel returns the group the member belongs to.
func (m GroupMember) GroupChannel() Channel { return GroupChannel(m.Group.ID) }

// TempChannel returns the temporary session with the member.
func (m GroupMember) TempChannel() Channel { return TempChannel(m.ID, m.Group.ID) }

// Friend is a QQ friend of the bot.
type Friend struct {
	ID       Target `json:"id"`
	Nickname string `json:"nickname"`
	Remark   string `json:"remark"`
}

// Equal compares friends by id.
func (f Friend) Equal(o Friend) bool { return f.ID == o.ID }

// FriendChannel returns the friend channel.
func (f Friend) FriendChannel() Channel { return FriendChannel(f.ID) }

// DisplayName prefers the remark over the nickname.
func (f Friend) DisplayName() string {
	if f.Remark != "" {
		return f.Remark
	}
	return f.Nickname
}
