package message

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SingleMessage is one element of a message chain.
//
// The set of implementations is closed: Plain, At, AtAll, Face, Image,
// FlashImage, XML, JSON, App, Poke, Source, Quote and Unsupported. Use a type
// switch to inspect an element.
type SingleMessage interface {
	// Type returns the wire discriminator of the element.
	Type() MessageType
	// String returns the compact display form, e.g. "[at:10001@alice]".
	String() string

	isSingleMessage()
}

// Plain is plain text, the most common element.
type Plain struct {
	Text string `json:"text"`
}

func (Plain) Type() MessageType { return TypePlain }
func (p Plain) String() string  { return p.Text }
func (Plain) isSingleMessage()  {}
func (p Plain) MarshalJSON() ([]byte, error) {
	type plain Plain
	return marshalTagged(TypePlain, plain(p))
}

// At mentions a group member. Display is how the mention is rendered; the
// gateway fills it in on received messages and ignores it when sending.
type At struct {
	Target  Target `json:"target"`
	Display string `json:"display"`
}

func (At) Type() MessageType { return TypeAt }
func (a At) String() string  { return fmt.Sprintf("[at:%d@%s]", a.Target, a.Display) }
func (At) isSingleMessage()  {}
func (a At) MarshalJSON() ([]byte, error) {
	type at At
	return marshalTagged(TypeAt, at(a))
}

// AtAll mentions every member of a group.
type AtAll struct{}

func (AtAll) Type() MessageType            { return TypeAtAll }
func (AtAll) String() string               { return "[atall]" }
func (AtAll) isSingleMessage()             {}
func (AtAll) MarshalJSON() ([]byte, error) { return marshalTagged(TypeAtAll, struct{}{}) }

// Face is a built-in QQ expression, selected by id or by name.
type Face struct {
	FaceID *int32 `json:"faceId,omitempty"`
	Name   string `json:"name,omitempty"`
}

// FaceByID returns a Face selected by its numeric id.
func FaceByID(id int32) Face {
	return Face{FaceID: &id}
}

func (Face) Type() MessageType { return TypeFace }
func (f Face) String() string {
	switch {
	case f.FaceID != nil:
		return "[ce:" + strconv.Itoa(int(*f.FaceID)) + "]"
	case f.Name != "":
		return "[ce:" + f.Name + "]"
	default:
		return "[ce:]"
	}
}
func (Face) isSingleMessage() {}
func (f Face) MarshalJSON() ([]byte, error) {
	type face Face
	return marshalTagged(TypeFace, face(f))
}

// Validate checks that the face can be resolved by the gateway.
func (f Face) Validate() error {
	if f.FaceID == nil && f.Name == "" {
		return ErrFaceUnresolved
	}
	return nil
}

// LocatorKind names the field an image is resolved by.
type LocatorKind string

const (
	LocatorImageID LocatorKind = "imageId"
	LocatorURL     LocatorKind = "url"
	LocatorPath    LocatorKind = "path"
)

// ImageRef locates an image. ImageID refers to an image already stored on the
// Tencent servers, URL to a remote image, Path to a file on the gateway
// host. When more than one is set the gateway uses imageId, then url, then path.
type ImageRef struct {
	ImageID string `json:"imageId,omitempty"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Locator returns the field the gateway will resolve the image by.
func (r ImageRef) Locator() (LocatorKind, string, bool) {
	switch {
	case r.ImageID != "":
		return LocatorImageID, r.ImageID, true
	case r.URL != "":
		return LocatorURL, r.URL, true
	case r.Path != "":
		return LocatorPath, r.Path, true
	}
	return "", "", false
}

// Validate checks that at least one locator is set.
func (r ImageRef) Validate() error {
	if _, _, ok := r.Locator(); !ok {
		return ErrImageUnresolved
	}
	return nil
}

// Image is a picture.
type Image struct {
	ImageRef
}

func (Image) Type() MessageType { return TypeImage }
func (Image) String() string    { return "[image]" }
func (Image) isSingleMessage()  {}
func (i Image) MarshalJSON() ([]byte, error) {
	return marshalTagged(TypeImage, i.ImageRef)
}

// FlashImage is a picture that can only be viewed for a short time.
type FlashImage struct {
	ImageRef
}

func (FlashImage) Type() MessageType { return TypeFlashImage }
func (FlashImage) String() string    { return "[flash_image]" }
func (FlashImage) isSingleMessage()  {}
func (i FlashImage) MarshalJSON() ([]byte, error) {
	return marshalTagged(TypeFlashImage, i.ImageRef)
}

// XML is a raw XML card payload, passed through as is.
type XML struct {
	XML string `json:"xml"`
}

func (XML) Type() MessageType { return TypeXML }
func (x XML) String() string  { return "[xml:" + x.XML + "]" }
func (XML) isSingleMessage()  {}
func (x XML) MarshalJSON() ([]byte, error) {
	type xml XML
	return marshalTagged(TypeXML, xml(x))
}

// JSON is a raw JSON card payload, passed through as a string.
type JSON struct {
	JSON string `json:"json"`
}

func (JSON) Type() MessageType { return TypeJSON }
func (j JSON) String() string  { return "[json:" + j.JSON + "]" }
func (JSON) isSingleMessage()  {}
func (j JSON) MarshalJSON() ([]byte, error) {
	type jsonCard JSON
	return marshalTagged(TypeJSON, jsonCard(j))
}

// App is a mini-program card payload.
type App struct {
	Content string `json:"content"`
}

func (App) Type() MessageType { return TypeApp }
func (a App) String() string  { return "[app:" + a.Content + "]" }
func (App) isSingleMessage()  {}
func (a App) MarshalJSON() ([]byte, error) {
	type app App
	return marshalTagged(TypeApp, app(a))
}

// Poke is a nudge, such as "Poke", "ShowLove" or "Like".
type Poke struct {
	Name string `json:"name"`
}

func (Poke) Type() MessageType { return TypePoke }
func (p Poke) String() string  { return "[poke:" + p.Name + "]" }
func (Poke) isSingleMessage()  {}
func (p Poke) MarshalJSON() ([]byte, error) {
	type poke Poke
	return marshalTagged(TypePoke, poke(p))
}

// Source is always the first element of a received chain. It carries the id
// and send time of the message and is never sent by the client.
type Source struct {
	ID   MessageID `json:"id"`
	Time Timestamp `json:"time"`
}

func (Source) Type() MessageType { return TypeSource }
func (s Source) String() string  { return fmt.Sprintf("[source:%d]", s.ID) }
func (Source) isSingleMessage()  {}
func (s Source) MarshalJSON() ([]byte, error) {
	type source Source
	return marshalTagged(TypeSource, source(s))
}

// Quote marks a message as a reply. Received quotes also describe the quoted
// message; a client building a reply only needs ID.
type Quote struct {
	ID       MessageID `json:"id"`
	GroupID  Target    `json:"groupId,omitempty"`
	SenderID Target    `json:"senderId,omitempty"`
	TargetID Target    `json:"targetId,omitempty"`
	Origin   Chain     `json:"origin,omitempty"`
}

func (Quote) Type() MessageType { return TypeQuote }
func (q Quote) String() string  { return fmt.Sprintf("[quote:%d]", q.ID) }
func (Quote) isSingleMessage()  {}
func (q Quote) MarshalJSON() ([]byte, error) {
	type quote Quote
	return marshalTagged(TypeQuote, quote(q))
}

// Unsupported is an element whose type this package does not model. Raw holds
// the element exactly as it was received and is written back unchanged.
type Unsupported struct {
	Kind string
	Raw  json.RawMessage
}

func (u Unsupported) Type() MessageType { return MessageType(u.Kind) }
func (u Unsupported) String() string    { return "[unsupported:" + u.Kind + "]" }
func (Unsupported) isSingleMessage()    {}
func (u Unsupported) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return marshalTagged(MessageType(u.Kind), struct{}{})
}
