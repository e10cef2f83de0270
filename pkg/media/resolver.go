package media

import (
	"path"
	"strings"
)

// URLs are the public locations of a derivative pair.
type URLs struct {
	Main      string
	Thumbnail string
}

// IsZero reports whether the pair is absent.
func (u URLs) IsZero() bool { return u.Main == "" && u.Thumbnail == "" }

// Resolver maps a stored base name to public URLs and storage refs. It never
// touches storage.
type Resolver struct {
	Prefix        string
	DisplayArea   string
	ThumbnailArea string
	ThumbnailExt  string
}

// NewResolver returns the resolver for derivatives served under prefix and
// encoded with ext.
func NewResolver(prefix, ext string) Resolver {
	return Resolver{
		Prefix:        strings.TrimRight(prefix, "/"),
		DisplayArea:   AreaOptimized,
		ThumbnailArea: AreaThumbnails,
		ThumbnailExt:  ext,
	}
}

// Resolve returns the URLs for name. An empty name yields zero URLs.
func (r Resolver) Resolve(name string) URLs {
	if name == "" {
		return URLs{}
	}
	return URLs{
		Main:      r.Prefix + "/" + r.DisplayArea + "/" + name,
		Thumbnail: r.Prefix + "/" + r.ThumbnailArea + "/" + r.ThumbnailName(name),
	}
}

// ThumbnailName derives the thumbnail's file name from the display name.
func (r Resolver) ThumbnailName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + "-thumb." + r.ThumbnailExt
}

// Locate returns the storage refs of both derivatives for name, or nil when
// name is empty or not a plain file name.
func (r Resolver) Locate(name string) []Ref {
	if !isPlainName(name) {
		return nil
	}
	return []Ref{
		{Area: r.DisplayArea, Name: name},
		{Area: r.ThumbnailArea, Name: r.ThumbnailName(name)},
	}
}
