package media

import "testing"

func TestResolverResolve(t *testing.T) {
	r := NewResolver("/uploads/", "webp")

	got := r.Resolve("abc.webp")
	if got.Main != "/uploads/optimized/abc.webp" {
		t.Fatalf("main url: %q", got.Main)
	}
	if got.Thumbnail != "/uploads/thumbnails/abc-thumb.webp" {
		t.Fatalf("thumbnail url: %q", got.Thumbnail)
	}
	if again := r.Resolve("abc.webp"); again != got {
		t.Fatalf("resolve not deterministic: %+v vs %+v", again, got)
	}

	// legacy names keep their display extension; the thumbnail always uses the target format
	legacy := r.Resolve("old.jpg")
	if legacy.Main != "/uploads/optimized/old.jpg" || legacy.Thumbnail != "/uploads/thumbnails/old-thumb.webp" {
		t.Fatalf("legacy urls: %+v", legacy)
	}

	if z := r.Resolve(""); !z.IsZero() {
		t.Fatalf("empty name should yield zero urls, got %+v", z)
	}
}

func TestResolverLocate(t *testing.T) {
	r := NewResolver("/uploads", "jpg")
	refs := r.Locate("id-1.jpg")
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0] != (Ref{Area: AreaOptimized, Name: "id-1.jpg"}) {
		t.Fatalf("display ref: %+v", refs[0])
	}
	if refs[1] != (Ref{Area: AreaThumbnails, Name: "id-1-thumb.jpg"}) {
		t.Fatalf("thumbnail ref: %+v", refs[1])
	}

	for _, bad := range []string{"", "..", "../etc/passwd", `a\b.jpg`} {
		if refs := r.Locate(bad); refs != nil {
			t.Fatalf("Locate(%q) should be nil, got %+v", bad, refs)
		}
	}
}
