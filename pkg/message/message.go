package message

import (
	"encoding/json"
	"fmt"
)

// Message is a complete chat message: optional Source and Quote metadata
// followed by the content chain.
//
// On the wire a Message is a single JSON array with Source first, then Quote,
// then the content elements. A Message is immutable once built; accessors
// return copies.
type Message struct {
	source *Source
	quote  *Quote
	chain  Chain
}

// New builds a message from content elements. It fails with a *BuildError
// when the chain is empty or an element cannot be sent.
func New(elems ...SingleMessage) (*Message, error) {
	return NewBuilder().Append(elems...).Build()
}

// Text returns a message consisting of a single Plain element.
func Text(s string) *Message {
	return &Message{chain: Chain{Plain{Text: s}}}
}

// Source returns the source metadata of a received message.
func (m *Message) Source() (Source, bool) {
	if m == nil || m.source == nil {
		return Source{}, false
	}
	return *m.source, true
}

// ID returns the message id from the source metadata, if present.
func (m *Message) ID() (MessageID, bool) {
	s, ok := m.Source()
	return s.ID, ok
}

// Quote returns the quote metadata, if the message is a reply.
func (m *Message) Quote() (Quote, bool) {
	if m == nil || m.quote == nil {
		return Quote{}, false
	}
	q := *m.quote
	q.Origin = append(Chain(nil), q.Origin...)
	return q, true
}

// Chain returns a copy of the content elements.
func (m *Message) Chain() Chain {
	if m == nil {
		return nil
	}
	return append(Chain(nil), m.chain...)
}

// Len returns the number of content elements.
func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.chain)
}

// Text concatenates the Plain elements of the content chain.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return m.chain.Text()
}

// String concatenates the display form of the content chain.
func (m *Message) String() string {
	if m == nil {
		return ""
	}
	return m.chain.String()
}

// Validate checks that the message can be sent.
func (m *Message) Validate() error {
	if m == nil {
		return &BuildError{Index: -1, Err: ErrEmptyChain}
	}
	return m.chain.Validate()
}

// Elements returns the full wire form: Source, Quote, then content.
func (m *Message) Elements() Chain {
	if m == nil {
		return Chain{}
	}
	out := make(Chain, 0, len(m.chain)+2)
	if m.source != nil {
		out = append(out, *m.source)
	}
	if m.quote != nil {
		out = append(out, *m.quote)
	}
	return append(out, m.chain...)
}

// MarshalJSON encodes the message as one JSON array.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Elements())
}

// UnmarshalJSON decodes a JSON array, splitting Source and Quote out of the
// content. A message without Source is accepted; only the first Source and
// Quote are kept as metadata.
func (m *Message) UnmarshalJSON(data []byte) error {
	var chain Chain
	if err := json.Unmarshal(data, &chain); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	var out Message
	for _, elem := range chain {
		switch v := elem.(type) {
		case Source:
			if out.source == nil {
				out.source = &v
			}
		case Quote:
			if out.quote == nil {
				out.quote = &v
			}
		default:
			out.chain = append(out.chain, elem)
		}
	}
	*m = out
	return nil
}
