package media

import "testing"

func TestFitBox(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		box          Box
		wantW, wantH int
	}{
		{"landscape display", 4000, 3000, DisplayBox, 1200, 900},
		{"landscape thumbnail", 4000, 3000, ThumbnailBox, 300, 225},
		{"portrait display", 2000, 4000, DisplayBox, 750, 1500},
		{"portrait thumbnail", 2000, 4000, ThumbnailBox, 150, 300},
		{"exact box", 1200, 1500, DisplayBox, 1200, 1500},
		{"small never upscaled", 640, 480, DisplayBox, 640, 480},
		{"small thumbnail untouched", 200, 100, ThumbnailBox, 200, 100},
		{"square into tall box", 3000, 3000, DisplayBox, 1200, 1200},
		{"extreme panorama", 10000, 10, ThumbnailBox, 300, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := FitBox(tc.w, tc.h, tc.box)
			if w != tc.wantW || h != tc.wantH {
				t.Fatalf("FitBox(%d,%d) = %dx%d, want %dx%d", tc.w, tc.h, w, h, tc.wantW, tc.wantH)
			}
			if w > tc.box.Width || h > tc.box.Height {
				t.Fatalf("%dx%d exceeds box %v", w, h, tc.box)
			}
		})
	}
}
