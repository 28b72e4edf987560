package message

// Builder assembles a Message. The zero value is ready to use.
//
//	msg, err := message.NewBuilder().
//		Quote(src.ID).
//		At(sender.ID).
//		Plain(" pong").
//		Build()
type Builder struct {
	quote *Quote
	chain Chain
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Append adds elements to the content chain.
func (b *Builder) Append(elems ...SingleMessage) *Builder {
	b.chain = append(b.chain, elems...)
	return b
}

// Plain appends a text element.
func (b *Builder) Plain(text string) *Builder {
	return b.Append(Plain{Text: text})
}

// At appends a mention of the given member.
func (b *Builder) At(target Target) *Builder {
	return b.Append(At{Target: target})
}

// AtAll appends a mention of the whole group.
func (b *Builder) AtAll() *Builder {
	return b.Append(AtAll{})
}

// Face appends a built-in expression by id.
func (b *Builder) Face(id int32) *Builder {
	return b.Append(FaceByID(id))
}

// Image appends an image.
func (b *Builder) Image(ref ImageRef) *Builder {
	return b.Append(Image{ImageRef: ref})
}

// FlashImage appends a flash image.
func (b *Builder) FlashImage(ref ImageRef) *Builder {
	return b.Append(FlashImage{ImageRef: ref})
}

// Quote makes the message a reply to id. Calling it again replaces the quote.
func (b *Builder) Quote(id MessageID) *Builder {
	b.quote = &Quote{ID: id}
	return b
}

// Build validates the chain and returns the message. The builder can be
// reused; the returned message does not share its chain.
func (b *Builder) Build() (*Message, error) {
	if err := b.chain.Validate(); err != nil {
		return nil, err
	}

	m := &Message{chain: append(Chain(nil), b.chain...)}
	if b.quote != nil {
		q := *b.quote
		m.quote = &q
	}
	return m, nil
}
