// Package message models the wire-level JSON shapes exchanged with a
// mirai-api-http gateway: message chain elements, whole messages, the
// contacts that send them, the channels they are sent to, and the events
// the gateway reports.
//
// A message chain is a JSON array of tagged objects. Each object carries a
// "type" field that selects its shape:
//
//	[
//	  {"type": "Source", "id": 1234, "time": 1600000000},
//	  {"type": "At", "target": 10001, "display": "@alice"},
//	  {"type": "Plain", "text": " hello"}
//	]
//
// Every element decodes to exactly one SingleMessage variant. Elements with
// a tag this package does not know decode to Unsupported, which keeps the
// raw JSON so newer gateways never break older clients.
package message

// Target identifies a QQ account or a group.
type Target uint64

// MessageID identifies a message on the gateway. Received messages carry it
// in their Source element; it is used for quoting and recalling.
type MessageID int64

// Timestamp is a unix time in seconds, as sent by the gateway.
type Timestamp uint64

// MessageType is the discriminator stored in the "type" field of a chain element.
type MessageType string

const (
	TypeSource     MessageType = "Source"
	TypeQuote      MessageType = "Quote"
	TypePlain      MessageType = "Plain"
	TypeAt         MessageType = "At"
	TypeAtAll      MessageType = "AtAll"
	TypeFace       MessageType = "Face"
	TypeImage      MessageType = "Image"
	TypeFlashImage MessageType = "FlashImage"
	TypeXML        MessageType = "Xml"
	TypeJSON       MessageType = "Json"
	TypeApp        MessageType = "App"
	TypePoke       MessageType = "Poke"
)

// IsMeta reports whether elements of this type describe a message rather than
// being part of its content.
func (t MessageType) IsMeta() bool {
	return t == TypeSource || t == TypeQuote
}
