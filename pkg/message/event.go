package message

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Event is something the gateway reports: a received message, a recall, a
// login state change, and so on. Use a type switch to inspect it.
type Event interface {
	// EventType returns the wire "type" of the event.
	EventType() string

	isEvent()
}

// MessageEvent is an event that carries a chat message.
type MessageEvent interface {
	Event
	// Content returns the received message.
	Content() *Message
	// SenderID returns the QQ number of the author.
	SenderID() Target
	// ReplyChannel returns the channel a reply should be sent to.
	ReplyChannel() Channel
}

// IsMessage reports whether e carries a chat message.
func IsMessage(e Event) bool {
	_, ok := e.(MessageEvent)
	return ok
}

// GroupMessage is a message posted in a group.
type GroupMessage struct {
	Message Message     `json:"messageChain"`
	Sender  GroupMember `json:"sender"`
}

func (GroupMessage) EventType() string       { return "GroupMessage" }
func (GroupMessage) isEvent()                {}
func (e GroupMessage) Content() *Message     { return &e.Message }
func (e GroupMessage) SenderID() Target      { return e.Sender.ID }
func (e GroupMessage) ReplyChannel() Channel { return e.Sender.GroupChannel() }
func (e GroupMessage) MarshalJSON() ([]byte, error) {
	type event GroupMessage
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// FriendMessage is a private message from a friend.
type FriendMessage struct {
	Message Message `json:"messageChain"`
	Sender  Friend  `json:"sender"`
}

func (FriendMessage) EventType() string       { return "FriendMessage" }
func (FriendMessage) isEvent()                {}
func (e FriendMessage) Content() *Message     { return &e.Message }
func (e FriendMessage) SenderID() Target      { return e.Sender.ID }
func (e FriendMessage) ReplyChannel() Channel { return e.Sender.FriendChannel() }
func (e FriendMessage) MarshalJSON() ([]byte, error) {
	type event FriendMessage
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// TempMessage is a private message from a group member who is not a friend.
type TempMessage struct {
	Message Message     `json:"messageChain"`
	Sender  GroupMember `json:"sender"`
}

func (TempMessage) EventType() string       { return "TempMessage" }
func (TempMessage) isEvent()                {}
func (e TempMessage) Content() *Message     { return &e.Message }
func (e TempMessage) SenderID() Target      { return e.Sender.ID }
func (e TempMessage) ReplyChannel() Channel { return e.Sender.TempChannel() }
func (e TempMessage) MarshalJSON() ([]byte, error) {
	type event TempMessage
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// GroupRecallEvent reports a recalled group message. A nil Operator means the
// bot itself recalled it.
type GroupRecallEvent struct {
	AuthorID  Target       `json:"authorId"`
	MessageID MessageID    `json:"messageId"`
	Time      Timestamp    `json:"time"`
	Group     Group        `json:"group"`
	Operator  *GroupMember `json:"operator"`
}

func (GroupRecallEvent) EventType() string { return "GroupRecallEvent" }
func (GroupRecallEvent) isEvent()          {}
func (e GroupRecallEvent) MarshalJSON() ([]byte, error) {
	type event GroupRecallEvent
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// FriendRecallEvent reports a recalled private message.
type FriendRecallEvent struct {
	AuthorID  Target    `json:"authorId"`
	MessageID MessageID `json:"messageId"`
	Time      Timestamp `json:"time"`
	Operator  Target    `json:"operator"`
}

func (FriendRecallEvent) EventType() string { return "FriendRecallEvent" }
func (FriendRecallEvent) isEvent()          {}
func (e FriendRecallEvent) MarshalJSON() ([]byte, error) {
	type event FriendRecallEvent
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// BotLoginKind distinguishes login state changes of the bot account.
type BotLoginKind string

const (
	BotOnline         BotLoginKind = "BotOnlineEvent"
	BotOfflineActive  BotLoginKind = "BotOfflineEventActive"
	BotOfflineForce   BotLoginKind = "BotOfflineEventForce"
	BotOfflineDropped BotLoginKind = "BotOfflineEventDropped"
	BotRelogin        BotLoginKind = "BotReloginEvent"
)

// BotLoginEvent reports that the bot went online, offline or logged in again.
type BotLoginEvent struct {
	Kind BotLoginKind `json:"type"`
	QQ   Target       `json:"qq"`
}

func (e BotLoginEvent) EventType() string { return string(e.Kind) }
func (BotLoginEvent) isEvent()            {}

// BotGroupPermissionChangeEvent reports a change of the bot's role in a group.
type BotGroupPermissionChangeEvent struct {
	Origin  Permission `json:"origin"`
	Current Permission `json:"current"`
	Group   Group      `json:"group"`
}

func (BotGroupPermissionChangeEvent) EventType() string { return "BotGroupPermissionChangeEvent" }
func (BotGroupPermissionChangeEvent) isEvent()          {}
func (e BotGroupPermissionChangeEvent) MarshalJSON() ([]byte, error) {
	type event BotGroupPermissionChangeEvent
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// BotMuteEvent reports that the bot was muted in a group.
type BotMuteEvent struct {
	DurationSeconds uint32      `json:"durationSeconds"`
	Operator        GroupMember `json:"operator"`
}

func (BotMuteEvent) EventType() string { return "BotMuteEvent" }
func (BotMuteEvent) isEvent()          {}
func (e BotMuteEvent) MarshalJSON() ([]byte, error) {
	type event BotMuteEvent
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// BotUnmuteEvent reports that the bot was unmuted in a group.
type BotUnmuteEvent struct {
	Operator GroupMember `json:"operator"`
}

func (BotUnmuteEvent) EventType() string { return "BotUnmuteEvent" }
func (BotUnmuteEvent) isEvent()          {}
func (e BotUnmuteEvent) MarshalJSON() ([]byte, error) {
	type event BotUnmuteEvent
	return marshalTagged(MessageType(e.EventType()), event(e))
}

// BotGroupKind distinguishes the bot joining or leaving a group.
type BotGroupKind string

const (
	BotJoinGroup   BotGroupKind = "BotJoinGroupEvent"
	BotLeaveActive BotGroupKind = "BotLeaveEventActive"
	BotLeaveKick   BotGroupKind = "BotLeaveEventKick"
)

// BotGroupEvent reports the bot joining or leaving a group.
type BotGroupEvent struct {
	Kind  BotGroupKind `json:"type"`
	Group Group        `json:"group"`
}

func (e BotGroupEvent) EventType() string { return string(e.Kind) }
func (BotGroupEvent) isEvent()            {}

// GroupChangeKind distinguishes group setting changes.
type GroupChangeKind string

const (
	GroupNameChange                 GroupChangeKind = "GroupNameChangeEvent"
	GroupEntranceAnnouncementChange GroupChangeKind = "GroupEntranceAnnouncementChangeEvent"
	GroupMuteAll                    GroupChangeKind = "GroupMuteAllEvent"
	GroupAllowAnonymousChat         GroupChangeKind = "GroupAllowAnonymousChatEvent"
	GroupAllowMemberInvite          GroupChangeKind = "GroupAllowMemberInviteEvent"
)

// ChangeValue is the old or new value of a group setting. Name and
// announcement changes carry text, the toggles carry a flag.
type ChangeValue struct {
	Text   string
	Flag   bool
	IsFlag bool
}

// TextValue returns a textual ChangeValue.
func TextValue(s string) ChangeValue { return ChangeValue{Text: s} }

// FlagValue returns a boolean ChangeValue.
func FlagValue(b bool) ChangeValue { return ChangeValue{Flag: b, IsFlag: true} }

func (v ChangeValue) String() string {
	if v.IsFlag {
		return strconv.FormatBool(v.Flag)
	}
	return v.Text
}

func (v ChangeValue) MarshalJSON() ([]byte, error) {
	if v.IsFlag {
		return json.Marshal(v.Flag)
	}
	return json.Marshal(v.Text)
}

func (v *ChangeValue) UnmarshalJSON(data []byte) error {
	var flag bool
	if err := json.Unmarshal(data, &flag); err == nil {
		*v = FlagValue(flag)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("change value must be a string or a bool: %w", err)
	}
	*v = TextValue(text)
	return nil
}

// GroupChangeEvent reports a change of a group setting. A nil Operator means
// the bot made the change.
type GroupChangeEvent struct {
	Kind     GroupChangeKind `json:"type"`
	Origin   ChangeValue     `json:"origin"`
	Current  ChangeValue     `json:"current"`
	Group    Group           `json:"group"`
	Operator *GroupMember    `json:"operator"`
}

func (e GroupChangeEvent) EventType() string { return string(e.Kind) }
func (GroupChangeEvent) isEvent()            {}

// UnsupportedEvent is an event this package does not model, or a known event
// whose body did not match the expected shape. Raw holds the event as received.
type UnsupportedEvent struct {
	Kind string
	Raw  json.RawMessage
	Err  error
}

func (e UnsupportedEvent) EventType() string { return e.Kind }
func (UnsupportedEvent) isEvent()            {}
func (e UnsupportedEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return marshalTagged(MessageType(e.Kind), struct{}{})
}

// DecodeEvent decodes a single event. Input that is not a JSON object is an
// error; anything else decodes, falling back to UnsupportedEvent.
func DecodeEvent(data []byte) (Event, error) {
	var head typeHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}

	var (
		ev  Event
		err error
	)
	switch head.Type {
	case "GroupMessage":
		ev, err = decodeEventAs[GroupMessage](data)
	case "FriendMessage":
		ev, err = decodeEventAs[FriendMessage](data)
	case "TempMessage":
		ev, err = decodeEventAs[TempMessage](data)
	case "GroupRecallEvent":
		ev, err = decodeEventAs[GroupRecallEvent](data)
	case "FriendRecallEvent":
		ev, err = decodeEventAs[FriendRecallEvent](data)
	case string(BotOnline), string(BotOfflineActive), string(BotOfflineForce),
		string(BotOfflineDropped), string(BotRelogin):
		ev, err = decodeEventAs[BotLoginEvent](data)
	case "BotGroupPermissionChangeEvent":
		ev, err = decodeEventAs[BotGroupPermissionChangeEvent](data)
	case "BotMuteEvent":
		ev, err = decodeEventAs[BotMuteEvent](data)
	case "BotUnmuteEvent":
		ev, err = decodeEventAs[BotUnmuteEvent](data)
	case string(BotJoinGroup), string(BotLeaveActive), string(BotLeaveKick):
		ev, err = decodeEventAs[BotGroupEvent](data)
	case string(GroupNameChange), string(GroupEntranceAnnouncementChange), string(GroupMuteAll),
		string(GroupAllowAnonymousChat), string(GroupAllowMemberInvite):
		ev, err = decodeEventAs[GroupChangeEvent](data)
	default:
		return unsupportedEvent(head.Type, data, nil), nil
	}
	if err != nil {
		return unsupportedEvent(head.Type, data, err), nil
	}
	return ev, nil
}

func decodeEventAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func unsupportedEvent(kind string, data []byte, err error) UnsupportedEvent {
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return UnsupportedEvent{Kind: kind, Raw: raw, Err: err}
}

// Events is a list of events decoded from a JSON array.
type Events []Event

func (es *Events) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode events: %w", err)
	}

	out := make(Events, 0, len(raws))
	for i, raw := range raws {
		ev, err := DecodeEvent(raw)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, ev)
	}
	*es = out
	return nil
}
