package inspect

import (
	"database/sql"
	"strings"
	"testing"

	"darlingdetails/pkg/media"
)

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func TestProblem(t *testing.T) {
	resolver := media.NewResolver("/uploads", "webp")
	cases := []struct {
		name string
		row  ImageRow
		want string
	}{
		{"no image", ImageRow{ID: 1}, ""},
		{"consistent", ImageRow{ID: 2, Image: ns("a.webp"), ImageURL: ns("/uploads/optimized/a.webp"), ThumbnailURL: ns("/uploads/thumbnails/a-thumb.webp")}, ""},
		{"partial", ImageRow{ID: 3, Image: ns("a.webp")}, "partial image state"},
		{"blank counts as unset", ImageRow{ID: 4, Image: ns(""), ImageURL: ns("/uploads/optimized/a.webp"), ThumbnailURL: ns("/uploads/thumbnails/a-thumb.webp")}, "partial image state"},
		{"stale thumbnail", ImageRow{ID: 5, Image: ns("a.webp"), ImageURL: ns("/uploads/optimized/a.webp"), ThumbnailURL: ns("/uploads/thumbnails/a-thumb.jpg")}, "thumbnailUrl"},
		{"foreign main", ImageRow{ID: 6, Image: ns("a.webp"), ImageURL: ns("/uploads/optimized/b.webp"), ThumbnailURL: ns("/uploads/thumbnails/a-thumb.webp")}, "imageUrl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Problem(tc.row, resolver)
			if tc.want == "" && got != "" {
				t.Fatalf("unexpected problem %q", got)
			}
			if !strings.HasPrefix(got, tc.want) {
				t.Fatalf("problem = %q, want prefix %q", got, tc.want)
			}
		})
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
