package message

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyChain is returned when a message has no content elements.
	ErrEmptyChain = errors.New("message chain is empty")
	// ErrMetaInContent is returned when Source or Quote appear as content.
	ErrMetaInContent = errors.New("source and quote cannot be message content")
	// ErrNilElement is returned for a nil chain element.
	ErrNilElement = errors.New("nil message element")
	// ErrImageUnresolved is returned for an image with no imageId, url or path.
	ErrImageUnresolved = errors.New("image has no imageId, url or path")
	// ErrFaceUnresolved is returned for a face with neither id nor name.
	ErrFaceUnresolved = errors.New("face has neither id nor name")
)

// BuildError reports why a message cannot be sent. Index is the offending
// element, or -1 when the message as a whole is at fault.
type BuildError struct {
	Index int
	Err   error
}

func (e *BuildError) Error() string {
	if e.Index < 0 {
		return "message building error: " + e.Err.Error()
	}
	return fmt.Sprintf("message building error: element %d: %v", e.Index, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// UnwrapError is returned when a Channel is unwrapped as the wrong kind.
type UnwrapError struct {
	Expected ChannelKind
	Got      ChannelKind
}

func (e *UnwrapError) Error() string {
	return fmt.Sprintf("channel unwrap: expected %s, got %s", e.Expected, e.Got)
}
