package media

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// register the webp decoder with image.Decode so webp uploads can be read
	_ "golang.org/x/image/webp"
)

// Encoder writes derivatives in the target format.
type Encoder interface {
	Extension() string
	ContentType() string
	Encode(w io.Writer, img image.Image, quality int) error
}

// EncoderFor returns the encoder for a target format name.
func EncoderFor(format string) (Encoder, error) {
	switch strings.ToLower(format) {
	case "webp":
		return webpEncoder{}, nil
	case "jpeg", "jpg":
		return jpegEncoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTargetFormat, format)
	}
}

type webpEncoder struct{}

func (webpEncoder) Extension() string   { return "webp" }
func (webpEncoder) ContentType() string { return "image/webp" }

func (webpEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Lossless: false, Quality: float32(quality)})
}

type jpegEncoder struct{}

func (jpegEncoder) Extension() string   { return "jpg" }
func (jpegEncoder) ContentType() string { return "image/jpeg" }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality int) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}
