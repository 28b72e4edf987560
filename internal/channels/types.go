// Package channels provides the communication channel framework for the bot
// runtime. Channels act as adapters between a chat platform and the handlers
// that react to messages, giving both sides a unified message shape.
package channels

import (
	"time"
)

// ChannelType represents supported channel types.
type ChannelType string

const (
	ChannelTypeMirai ChannelType = "mirai"
)

// ChatType represents the type of chat.
type ChatType string

const (
	ChatTypeDirect ChatType = "direct"
	ChatTypeGroup  ChatType = "group"
	ChatTypeTemp   ChatType = "temp"
)

// Capabilities describes what a channel supports.
type Capabilities struct {
	ChatTypes []ChatType `json:"chatTypes"`
	Media     bool       `json:"media"`
	Quotes    bool       `json:"quotes"`
	Polling   bool       `json:"polling"`
	Websocket bool       `json:"websocket"`
}

// Supports reports whether chat type t is listed.
func (c *Capabilities) Supports(t ChatType) bool {
	for _, ct := range c.ChatTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// RuntimeState holds runtime state of a channel.
type RuntimeState struct {
	Running        bool       `json:"running"`
	Mode           string     `json:"mode,omitempty"` // "polling", "websocket"
	LastStartAt    *time.Time `json:"lastStartAt,omitempty"`
	LastStopAt     *time.Time `json:"lastStopAt,omitempty"`
	LastError      string     `json:"lastError,omitempty"`
	LastInboundAt  *time.Time `json:"lastInboundAt,omitempty"`
	LastOutboundAt *time.Time `json:"lastOutboundAt,omitempty"`
	MessageCount   int64      `json:"messageCount"`
}

// ProbeResult holds the result of probing a channel.
type ProbeResult struct {
	OK        bool   `json:"ok"`
	BotID     string `json:"botId,omitempty"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latencyMs,omitempty"`
}

// SendResult holds the result of sending a message.
type SendResult struct {
	MessageID string `json:"messageId"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}
