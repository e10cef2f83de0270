package media

import (
	"fmt"
	"strings"
)

// DefaultMaxBytes is the upload ceiling used when none is configured.
const DefaultMaxBytes int64 = 10 << 20

// DefaultExtensions lists the accepted upload extensions.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// Validator gatekeeps uploads on metadata only. Pixel content is never inspected.
type Validator struct {
	MaxBytes   int64
	Extensions []string
}

// NewValidator returns a validator with the default allow-list. A non-positive
// maxBytes falls back to DefaultMaxBytes.
func NewValidator(maxBytes int64) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Validator{MaxBytes: maxBytes, Extensions: DefaultExtensions}
}

// Validate returns nil, or an error wrapping ErrUnsupportedFormat or ErrPayloadTooLarge.
func (v *Validator) Validate(c UploadCandidate) error {
	if !v.allowed(c.Extension()) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.OriginalFilename)
	}
	if c.SizeBytes > v.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, c.SizeBytes, v.MaxBytes)
	}
	return nil
}

func (v *Validator) allowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, e := range v.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
