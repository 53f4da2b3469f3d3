package detector

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasense/shrimpscale/internal/conf"
)

// toLetterbox applies the forward transform, the counterpart of ToOriginal.
func toLetterbox(b Box, p LetterboxParams) Box {
	return Box{
		X1: b.X1*p.Scale + float64(p.PadLeft),
		Y1: b.Y1*p.Scale + float64(p.PadTop),
		X2: b.X2*p.Scale + float64(p.PadLeft),
		Y2: b.Y2*p.Scale + float64(p.PadTop),
	}
}

func TestLetterboxGeometry(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	padded, params := Letterbox(frame, 416)

	assert.Equal(t, 416, padded.Bounds().Dx())
	assert.Equal(t, 416, padded.Bounds().Dy())
	assert.InDelta(t, 0.65, params.Scale, 1e-9)
	assert.Equal(t, 0, params.PadLeft)
	assert.Equal(t, 52, params.PadTop)

	// Symmetric gray padding above the image content.
	assert.Equal(t, padColor, padded.NRGBAAt(200, 10))
}

func TestLetterboxRoundTrip(t *testing.T) {
	frame := image.NewNRGBA(image.Rect(0, 0, 640, 480))
	_, params := Letterbox(frame, 416)

	original := Box{X1: 100, Y1: 120, X2: 260, Y2: 300}
	recovered := params.ToOriginal(toLetterbox(original, params), 640, 480)

	const tolerance = 1.0 // pixel-rounding tolerance
	assert.InDelta(t, original.X1, recovered.X1, tolerance)
	assert.InDelta(t, original.Y1, recovered.Y1, tolerance)
	assert.InDelta(t, original.X2, recovered.X2, tolerance)
	assert.InDelta(t, original.Y2, recovered.Y2, tolerance)
}

func TestToOriginalClipsToFrameBounds(t *testing.T) {
	params := LetterboxParams{Scale: 0.65, PadLeft: 0, PadTop: 52}

	// A box reaching into the padding maps outside the frame and is clipped.
	clipped := params.ToOriginal(Box{X1: -40, Y1: 0, X2: 500, Y2: 416}, 640, 480)
	assert.GreaterOrEqual(t, clipped.X1, 0.0)
	assert.GreaterOrEqual(t, clipped.Y1, 0.0)
	assert.LessOrEqual(t, clipped.X2, 640.0)
	assert.LessOrEqual(t, clipped.Y2, 480.0)
}

func TestDisabledDetector(t *testing.T) {
	settings := &conf.DetectorSettings{
		ModelPath: filepath.Join(t.TempDir(), "missing.tflite"),
		Threshold: 0.25,
		InputSize: 416,
	}

	d := New(settings, nil)
	require.True(t, d.Disabled(), "missing model must disable the detector, not fail")

	frame := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	result := d.Detect(frame, true)
	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Boxes)
	assert.Same(t, image.Image(frame), result.Annotated, "disabled detector returns the frame unmodified")
}
