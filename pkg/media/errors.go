package media

import "errors"

var (
	// ErrUnsupportedFormat is returned when the upload's extension is not an allowed image type.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrPayloadTooLarge is returned when the upload exceeds the configured size ceiling.
	ErrPayloadTooLarge = errors.New("image too large")
	// ErrProcessing covers decode, resize, encode and storage write failures.
	ErrProcessing = errors.New("image processing failed")
	// ErrNotFound is returned by stores for a missing derivative.
	ErrNotFound = errors.New("derivative not found")
	// ErrUnknownTargetFormat is returned by EncoderFor for formats without an encoder.
	ErrUnknownTargetFormat = errors.New("unknown target format")
)
