package detector

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var annotationColor = color.NRGBA{G: 255, A: 255}

// Annotate draws the detection boxes blended at 60% opacity over the frame
// and overlays the FPS and count readout for the live view.
func Annotate(frame image.Image, boxes []Box, fps, count int) image.Image {
	base := imaging.Clone(frame)
	overlay := imaging.Clone(frame)

	for _, b := range boxes {
		drawRect(overlay, b)
	}
	blended := imaging.Overlay(base, overlay, image.Pt(0, 0), 0.6)

	drawLabel(blended, fmt.Sprintf("%d FPS | Count: %d", fps, count), 15, 40)
	return blended
}

// drawRect draws a 1px rectangle outline clipped to the image bounds.
func drawRect(img *image.NRGBA, b Box) {
	x1, y1, x2, y2 := int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)
	for x := x1; x <= x2; x++ {
		setPixel(img, x, y1)
		setPixel(img, x, y2)
	}
	for y := y1; y <= y2; y++ {
		setPixel(img, x1, y)
		setPixel(img, x2, y)
	}
}

func setPixel(img *image.NRGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, annotationColor)
	}
}

func drawLabel(img *image.NRGBA, text string, x, y int) {
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(annotationColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}
