package channels

// Destination represents a message destination.
type Destination struct {
	ChannelType string `json:"channelType"`
	// ChatID is platform specific, e.g. "group:42" for mirai.
	ChatID string `json:"chatId"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Type     string `json:"type"` // "image", "flash_image"
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Name     string `json:"name,omitempty"`
}

// IncomingMessage represents an incoming message from a channel.
type IncomingMessage struct {
	ID          string       `json:"id"`
	ChannelType string       `json:"channelType"`
	ChatID      string       `json:"chatId"`
	ChatType    ChatType     `json:"chatType,omitempty"`
	SenderID    string       `json:"senderId"`
	SenderName  string       `json:"senderName"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   int64        `json:"timestamp"`
	// Mentioned is set when the message mentions the bot or everyone.
	Mentioned bool `json:"mentioned,omitempty"`
	// ReplyTo is the id to quote when answering this message.
	ReplyTo string `json:"replyTo,omitempty"`
}

// Reply returns a SendRequest answering msg in the same chat.
func (m *IncomingMessage) Reply(text string) *SendRequest {
	return &SendRequest{
		To:      Destination{ChannelType: m.ChannelType, ChatID: m.ChatID},
		Text:    text,
		ReplyTo: m.ReplyTo,
	}
}
