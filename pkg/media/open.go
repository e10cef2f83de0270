package media

import "context"

// OpenStore returns the MinIO store when driver is "minio" and a local store
// rooted at baseDir otherwise. The local areas are created on open.
func OpenStore(ctx context.Context, driver, baseDir string, opts MinIOOptions) (Store, error) {
	if driver == "minio" {
		return NewMinIOStore(ctx, opts)
	}
	local := NewLocalStore(baseDir)
	if err := local.EnsureAreas(); err != nil {
		return nil, err
	}
	return local, nil
}
