package mirai

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/liteclaw/mirai/pkg/message"
)

// ImageType says which kind of conversation an uploaded image is meant for.
// An image uploaded for one kind cannot be sent to another.
type ImageType string

const (
	ImageFriend ImageType = "friend"
	ImageGroup  ImageType = "group"
	ImageTemp   ImageType = "temp"
)

// ParseImageType parses "friend", "group" or "temp".
func ParseImageType(s string) (ImageType, error) {
	switch t := ImageType(s); t {
	case ImageFriend, ImageGroup, ImageTemp:
		return t, nil
	default:
		return "", fmt.Errorf("invalid image type %q: want friend, group or temp", s)
	}
}

// ImageTypeFor returns the image type matching a channel.
func ImageTypeFor(ch message.Channel) ImageType {
	switch ch.Kind() {
	case message.ChannelGroup:
		return ImageGroup
	case message.ChannelTemp:
		return ImageTemp
	default:
		return ImageFriend
	}
}

// UploadedImage describes an image stored by the gateway.
type UploadedImage struct {
	ImageID string `json:"imageId" yaml:"imageId"`
	URL     string `json:"url" yaml:"url"`
	Path    string `json:"path" yaml:"path"`
}

// Image returns a chain element referring to the uploaded image.
func (u UploadedImage) Image() message.Image {
	return message.Image{ImageRef: message.ImageRef{
		ImageID: u.ImageID,
		URL:     u.URL,
		Path:    u.Path,
	}}
}

// UploadImage uploads an image read from r as a multipart form.
func (s *Session) UploadImage(ctx context.Context, typ ImageType, r io.Reader, fileName string) (*UploadedImage, error) {
	const op = "UploadImage"

	if _, err := ParseImageType(string(typ)); err != nil {
		return nil, clientError(op, err)
	}
	if fileName == "" {
		return nil, clientErrorf(op, "file name is required")
	}

	req := s.client.rest.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"sessionKey": s.key,
			"type":       string(typ),
		}).
		SetFileReader("img", fileName, r)

	var img UploadedImage
	if err := s.client.call(req, http.MethodPost, "/uploadImage", op, &img); err != nil {
		return nil, err
	}
	if img.ImageID == "" && img.URL == "" && img.Path == "" {
		return nil, serverError(op, fmt.Errorf("gateway returned no image locator"))
	}
	return &img, nil
}
