package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalTagged encodes body as a JSON object and prepends the "type" field.
func marshalTagged(t MessageType, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(raw) + len(tag) + 9)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if inner := bytes.TrimSpace(raw[1 : len(raw)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type typeHeader struct {
	Type string `json:"type"`
}

// Decode decodes a single chain element. A known tag with a malformed body is
// an error; an unknown tag yields Unsupported.
func Decode(data []byte) (SingleMessage, error) {
	var head typeHeader
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode message element: %w", err)
	}

	switch MessageType(head.Type) {
	case TypeSource:
		return decodeVariant[Source](head.Type, data)
	case TypeQuote:
		return decodeVariant[Quote](head.Type, data)
	case TypePlain:
		return decodeVariant[Plain](head.Type, data)
	case TypeAt:
		return decodeVariant[At](head.Type, data)
	case TypeAtAll:
		return AtAll{}, nil
	case TypeFace:
		return decodeVariant[Face](head.Type, data)
	case TypeImage:
		return decodeVariant[Image](head.Type, data)
	case TypeFlashImage:
		return decodeVariant[FlashImage](head.Type, data)
	case TypeXML:
		return decodeVariant[XML](head.Type, data)
	case TypeJSON:
		return decodeVariant[JSON](head.Type, data)
	case TypeApp:
		return decodeVariant[App](head.Type, data)
	case TypePoke:
		return decodeVariant[Poke](head.Type, data)
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Unsupported{Kind: head.Type, Raw: raw}, nil
	}
}

func decodeVariant[T SingleMessage](tag string, data []byte) (SingleMessage, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s element: %w", tag, err)
	}
	return v, nil
}

// Encode encodes a single chain element with its "type" field.
func Encode(m SingleMessage) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode message element: nil element")
	}
	return json.Marshal(m)
}

// Chain is an ordered list of chain elements.
type Chain []SingleMessage

// UnmarshalJSON decodes a JSON array of tagged elements.
func (c *Chain) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode message chain: %w", err)
	}
	if raws == nil {
		*c = nil
		return nil
	}

	chain := make(Chain, 0, len(raws))
	for i, raw := range raws {
		m, err := Decode(raw)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		chain = append(chain, m)
	}
	*c = chain
	return nil
}

// MarshalJSON encodes the chain as a JSON array. A nil chain encodes as [].
func (c Chain) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]SingleMessage(c))
}

// String concatenates the display form of every element.
func (c Chain) String() string {
	var sb strings.Builder
	for _, m := range c {
		sb.WriteString(m.String())
	}
	return sb.String()
}

// Text concatenates only the Plain elements.
func (c Chain) Text() string {
	var sb strings.Builder
	for _, m := range c {
		if p, ok := m.(Plain); ok {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

type validatable interface {
	Validate() error
}

// Validate checks that the chain can be sent: it must be non-empty, contain
// no Source or Quote elements, and every element must be resolvable.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return &BuildError{Index: -1, Err: ErrEmptyChain}
	}
	for i, m := range c {
		if m == nil {
			return &BuildError{Index: i, Err: ErrNilElement}
		}
		if m.Type().IsMeta() {
			return &BuildError{Index: i, Err: ErrMetaInContent}
		}
		if v, ok := m.(validatable); ok {
			if err := v.Validate(); err != nil {
				return &BuildError{Index: i, Err: err}
			}
		}
	}
	return nil
}
