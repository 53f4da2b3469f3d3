package detector

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Letterbox padding uses the conventional YOLO gray value.
var padColor = color.NRGBA{R: 114, G: 114, B: 114, A: 255}

// LetterboxParams records the forward transform so detections can be mapped
// back to original frame coordinates.
type LetterboxParams struct {
	Scale   float64
	PadLeft int
	PadTop  int
}

// Letterbox resizes the frame to fit a square of the given size while
// preserving aspect ratio, padding symmetrically with gray. The detector
// sees undistorted geometry this way.
func Letterbox(frame image.Image, size int) (*image.NRGBA, LetterboxParams) {
	bounds := frame.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)

	resized := imaging.Resize(frame, nw, nh, imaging.Linear)
	padded := imaging.New(size, size, padColor)

	params := LetterboxParams{
		Scale:   scale,
		PadLeft: (size - nw) / 2,
		PadTop:  (size - nh) / 2,
	}
	padded = imaging.Paste(padded, resized, image.Pt(params.PadLeft, params.PadTop))
	return padded, params
}

// ToOriginal maps a box from letterboxed coordinates back to the original
// frame and clips it to the frame bounds.
func (p LetterboxParams) ToOriginal(b Box, width, height int) Box {
	return Box{
		X1: clamp((b.X1-float64(p.PadLeft))/p.Scale, 0, float64(width)),
		Y1: clamp((b.Y1-float64(p.PadTop))/p.Scale, 0, float64(height)),
		X2: clamp((b.X2-float64(p.PadLeft))/p.Scale, 0, float64(width)),
		Y2: clamp((b.Y2-float64(p.PadTop))/p.Scale, 0, float64(height)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
