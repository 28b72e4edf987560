package mirai

import (
	"context"

	"github.com/liteclaw/mirai/pkg/message"
)

type sendRequest struct {
	SessionKey   string             `json:"sessionKey"`
	QQ           *message.Target    `json:"qq,omitempty"`
	Group        *message.Target    `json:"group,omitempty"`
	Quote        *message.MessageID `json:"quote,omitempty"`
	MessageChain message.Chain      `json:"messageChain"`
}

// SendMessage sends msg to ch and returns the id the gateway assigned to it.
// The message is validated first; an empty or unsendable message fails with
// a KindMessageBuilding error and nothing is sent.
func (s *Session) SendMessage(ctx context.Context, ch message.Channel, msg *message.Message) (message.MessageID, error) {
	const op = "Sending"

	if err := msg.Validate(); err != nil {
		return 0, &Error{Kind: KindMessageBuilding, Op: op, Err: err}
	}

	req := sendRequest{
		SessionKey:   s.key,
		MessageChain: msg.Chain(),
	}
	if q, ok := msg.Quote(); ok {
		req.Quote = &q.ID
	}

	var path string
	switch ch.Kind() {
	case message.ChannelFriend:
		qq, _ := ch.Friend()
		req.QQ = &qq
		path = "/sendFriendMessage"
	case message.ChannelGroup:
		group, _ := ch.Group()
		req.Group = &group
		path = "/sendGroupMessage"
	case message.ChannelTemp:
		qq, group, _ := ch.Temp()
		req.QQ = &qq
		req.Group = &group
		path = "/sendTempMessage"
	default:
		return 0, clientErrorf(op, "invalid channel")
	}

	var resp struct {
		MessageID message.MessageID `json:"messageId"`
	}
	if err := s.client.post(ctx, op, path, req, &resp); err != nil {
		return 0, err
	}

	s.client.logger.Debug().
		Str("channel", ch.String()).
		Int64("messageId", int64(resp.MessageID)).
		Msg("Message sent")
	return resp.MessageID, nil
}

// SendText sends a plain text message.
func (s *Session) SendText(ctx context.Context, ch message.Channel, text string) (message.MessageID, error) {
	return s.SendMessage(ctx, ch, message.Text(text))
}

// Reply sends msg to the channel ev came from, quoting ev. Events without a
// Source are answered without a quote.
func (s *Session) Reply(ctx context.Context, ev message.MessageEvent, elems ...message.SingleMessage) (message.MessageID, error) {
	b := message.NewBuilder().Append(elems...)
	if id, ok := ev.Content().ID(); ok {
		b.Quote(id)
	}
	msg, err := b.Build()
	if err != nil {
		return 0, &Error{Kind: KindMessageBuilding, Op: "Sending", Err: err}
	}
	return s.SendMessage(ctx, ev.ReplyChannel(), msg)
}
