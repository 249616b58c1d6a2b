package types

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// VisualKind discriminates the visual variant of a post.
type VisualKind string

const (
	KindImage VisualKind = "image"
	KindVideo VisualKind = "video"
)

// Visual is a tagged variant: an image post may carry a synthesized
// image blob, a video post may carry a script. The two never mix, so
// invalid states (a video with an image url) are unrepresentable
// through the constructors.
type Visual struct {
	Kind   VisualKind `json:"kind"`
	Image  *ImageBlob `json:"image,omitempty"`
	Script string     `json:"script,omitempty"`
}

// NewImageVisual returns an image visual, optionally pre-populated
// with a synthesized blob.
func NewImageVisual(img *ImageBlob) Visual {
	return Visual{Kind: KindImage, Image: img}
}

// NewVideoVisual returns a video visual with its script.
func NewVideoVisual(script string) Visual {
	return Visual{Kind: KindVideo, Script: script}
}

// Validate rejects cross-variant field combinations.
func (v Visual) Validate() error {
	switch v.Kind {
	case KindImage:
		if v.Script != "" {
			return fmt.Errorf("image visual cannot carry a video script")
		}
	case KindVideo:
		if v.Image != nil {
			return fmt.Errorf("video visual cannot carry an image blob")
		}
	default:
		return fmt.Errorf("unknown visual kind %q", v.Kind)
	}
	return nil
}

// WithImage returns a copy of v with the image blob replaced.
// Only meaningful for image visuals; video visuals are returned as-is.
func (v Visual) WithImage(img *ImageBlob) Visual {
	if v.Kind != KindImage {
		return v
	}
	v.Image = img
	return v
}

// ImageBlob is a self-describing embedded image: media type plus raw
// bytes. It serializes as a data URI, which is both the durable
// encoding and the form the generation API exchanges (inlineData).
type ImageBlob struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a data URI (data:image/png;base64,....) into an
// ImageBlob. Bare base64 payloads are accepted with an image/png
// default, matching what the upload layer produces.
func ParseDataURI(s string) (*ImageBlob, error) {
	if s == "" {
		return nil, fmt.Errorf("empty data URI")
	}
	mime := "image/png"
	payload := s
	if strings.HasPrefix(s, "data:") {
		meta, rest, ok := strings.Cut(s[len("data:"):], ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URI")
		}
		payload = rest
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return &ImageBlob{MIMEType: mime, Data: data}, nil
}

// DataURI renders the blob as a data URI string.
func (b *ImageBlob) DataURI() string {
	return fmt.Sprintf("data:%s;base64,%s", b.MIMEType, base64.StdEncoding.EncodeToString(b.Data))
}

// Base64 returns the raw payload without the data URI prefix.
func (b *ImageBlob) Base64() string {
	return base64.StdEncoding.EncodeToString(b.Data)
}

// MarshalJSON encodes the blob as its data URI string.
func (b *ImageBlob) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.DataURI())
}

// UnmarshalJSON decodes a data URI string into the blob.
func (b *ImageBlob) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDataURI(s)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}
