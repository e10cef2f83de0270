package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Source gives access to the raw bytes of an upload and discards them once the
// derivatives exist.
type Source interface {
	Open() (io.ReadCloser, error)
	Discard() error
}

// UploadCandidate is a single incoming image, alive for one request.
type UploadCandidate struct {
	OriginalFilename string
	SizeBytes        int64
	Source           Source
}

// Extension returns the lowercased extension of the original filename without the dot.
func (c UploadCandidate) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(c.OriginalFilename)), ".")
}

// FileSource is an upload spooled to disk.
type FileSource string

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

func (f FileSource) Discard() error { return os.Remove(string(f)) }

// BytesSource is an upload held in memory. Discard is a no-op.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (b BytesSource) Discard() error { return nil }

// SpoolName returns a collision-free file name for spooling an upload,
// keeping the original's lowercased extension.
func SpoolName(originalFilename string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(originalFilename))
}
