package media

import (
	"image"

	"github.com/disintegration/imaging"
)

// Box is a bounding box in pixels.
type Box struct {
	Width  int
	Height int
}

var (
	DisplayBox   = Box{Width: 1200, Height: 1500}
	ThumbnailBox = Box{Width: 300, Height: 300}
)

// FitBox returns the dimensions of a w×h image scaled to fit inside box with its
// aspect ratio kept. Images already inside the box are returned unchanged.
func FitBox(w, h int, box Box) (int, int) {
	if w <= box.Width && h <= box.Height {
		return w, h
	}
	var nw, nh int
	if w*box.Height > box.Width*h {
		nw = box.Width
		nh = (2*h*box.Width + w) / (2 * w)
	} else {
		nh = box.Height
		nw = (2*w*box.Height + h) / (2 * h)
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

func fit(img image.Image, box Box) image.Image {
	b := img.Bounds()
	w, h := FitBox(b.Dx(), b.Dy(), box)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
