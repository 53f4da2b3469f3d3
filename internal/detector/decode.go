package detector

import (
	"github.com/aquasense/shrimpscale/internal/errors"
)

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// OutputLayout identifies the raw tensor layout the loaded model emits.
// It is decided once at model load time by inspecting the declared output
// shape, not per frame.
type OutputLayout int

const (
	// LayoutPreNMS: each row is (x1, y1, x2, y2, confidence, class[, extra]);
	// non-max suppression already applied by the exporting model.
	LayoutPreNMS OutputLayout = iota
	// LayoutRawAnchors: each row is (cx, cy, w, h, objectness, classScores...);
	// no suppression applied.
	LayoutRawAnchors
)

func (l OutputLayout) String() string {
	switch l {
	case LayoutPreNMS:
		return "pre-nms"
	case LayoutRawAnchors:
		return "raw-anchors"
	default:
		return "unknown"
	}
}

// layoutForDims auto-detects the output layout from the tensor shape. The
// trailing dimension is the per-row field count.
func layoutForDims(dims []int) (OutputLayout, int, error) {
	if len(dims) != 3 {
		return 0, 0, errors.Newf("unsupported output tensor rank %d", len(dims)).
			Component("detector").
			Category(errors.CategoryModelInit).
			Context("dims", dims).
			Build()
	}

	stride := dims[len(dims)-1]
	switch {
	case stride == 6 || stride == 7:
		return LayoutPreNMS, stride, nil
	case stride > 7:
		return LayoutRawAnchors, stride, nil
	default:
		return 0, 0, errors.Newf("unsupported output row width %d", stride).
			Component("detector").
			Category(errors.CategoryModelInit).
			Context("dims", dims).
			Build()
	}
}

// decodePreNMS keeps rows whose confidence meets the threshold. Boxes are
// already corner-form in letterbox coordinates. Trailing partial rows are
// skipped rather than treated as fatal.
func decodePreNMS(out []float32, stride int, threshold float32) []Box {
	var boxes []Box
	for i := 0; i+stride <= len(out); i += stride {
		row := out[i : i+stride]
		if row[4] < threshold {
			continue
		}
		boxes = append(boxes, Box{
			X1: float64(row[0]),
			Y1: float64(row[1]),
			X2: float64(row[2]),
			Y2: float64(row[3]),
		})
	}
	return boxes
}

// decodeRawAnchors decodes anchor predictions without NMS applied:
// effective confidence is objectness times the best class score, and
// center-form boxes are converted to corner-form. Overlapping duplicates
// are accepted as-is; no additional suppression is performed here.
func decodeRawAnchors(out []float32, stride int, threshold float32) []Box {
	var boxes []Box
	for i := 0; i+stride <= len(out); i += stride {
		row := out[i : i+stride]

		objectness := row[4]
		var best float32
		for _, score := range row[5:] {
			if score > best {
				best = score
			}
		}
		if objectness*best < threshold {
			continue
		}

		cx, cy := float64(row[0]), float64(row[1])
		w, h := float64(row[2]), float64(row[3])
		boxes = append(boxes, Box{
			X1: cx - w/2,
			Y1: cy - h/2,
			X2: cx + w/2,
			Y2: cy + h/2,
		})
	}
	return boxes
}
