// Package detector runs the shrimp object-detection model and turns raw
// model output into a per-frame count. A model that fails to load leaves
// the detector in a disabled state where every detection returns count 0;
// the sampling loop never sees a hard failure from this package.
package detector

import (
	"image"
	"os"
	"runtime"
	"sync"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/aquasense/shrimpscale/internal/conf"
	"github.com/aquasense/shrimpscale/internal/errors"
	"github.com/aquasense/shrimpscale/internal/observability"
)

// Result is the outcome of one detection pass. It is transient and
// recomputed every frame; nothing here is persisted.
type Result struct {
	Count           int
	Boxes           []Box // Original-frame pixel coordinates, clipped to bounds
	InferenceTimeMs float64
	Annotated       image.Image // Set only when annotation was requested
}

// Detector wraps the TFLite interpreter for the shrimp model.
type Detector struct {
	settings  *conf.DetectorSettings
	metrics   *observability.Metrics
	threshold float32
	inputSize int

	mu          sync.Mutex
	interpreter *tflite.Interpreter
	layout      OutputLayout
	stride      int
	disabled    bool
}

// New loads the detection model once. Load failures are soft: the detector
// comes up disabled and logs the cause instead of failing construction.
func New(settings *conf.DetectorSettings, metrics *observability.Metrics) *Detector {
	d := &Detector{
		settings:  settings,
		metrics:   metrics,
		threshold: float32(settings.Threshold),
		inputSize: settings.InputSize,
	}
	if err := d.initializeModel(); err != nil {
		getLogger().Error("failed to load detection model, detector disabled",
			"model", settings.ModelPath, "error", err)
		d.disabled = true
	} else {
		getLogger().Info("detection model loaded",
			"model", settings.ModelPath, "layout", d.layout.String(), "input_size", d.inputSize)
	}
	return d
}

// Disabled reports whether the detector is running without a model.
func (d *Detector) Disabled() bool {
	return d.disabled
}

func (d *Detector) initializeModel() error {
	modelData, err := os.ReadFile(d.settings.ModelPath)
	if err != nil {
		return errors.New(err).
			Component("detector").
			Category(errors.CategoryModelLoad).
			Context("model_path", d.settings.ModelPath).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return errors.Newf("cannot parse TensorFlow Lite model").
			Component("detector").
			Category(errors.CategoryModelInit).
			Context("model_path", d.settings.ModelPath).
			Build()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(runtime.NumCPU())

	d.interpreter = tflite.NewInterpreter(model, options)
	if d.interpreter == nil {
		return errors.Newf("cannot create interpreter").
			Component("detector").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := d.interpreter.AllocateTensors(); status != tflite.OK {
		return errors.Newf("tensor allocation failed").
			Component("detector").
			Category(errors.CategoryModelInit).
			Build()
	}

	input := d.interpreter.GetInputTensor(0)
	if input == nil || len(input.Float32s()) != d.inputSize*d.inputSize*3 {
		return errors.Newf("input tensor does not match %dx%dx3", d.inputSize, d.inputSize).
			Component("detector").
			Category(errors.CategoryModelInit).
			Build()
	}

	output := d.interpreter.GetOutputTensor(0)
	if output == nil {
		return errors.Newf("cannot get output tensor").
			Component("detector").
			Category(errors.CategoryModelInit).
			Build()
	}
	dims := make([]int, output.NumDims())
	for i := range dims {
		dims[i] = output.Dim(i)
	}
	d.layout, d.stride, err = layoutForDims(dims)
	return err
}

// Detect runs one inference pass on the frame and returns the shrimp count
// with boxes mapped back to original-frame coordinates. When annotate is
// set the result carries the frame with blended boxes and an FPS/count
// overlay. A disabled detector returns count 0 and the frame unmodified.
func (d *Detector) Detect(frame image.Image, annotate bool) Result {
	if frame == nil {
		return Result{}
	}
	if d.disabled {
		return Result{Annotated: frame}
	}

	bounds := frame.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	letterboxed, params := Letterbox(frame, d.inputSize)

	d.mu.Lock()
	fillInputTensor(d.interpreter.GetInputTensor(0).Float32s(), letterboxed, d.inputSize)

	start := time.Now()
	if status := d.interpreter.Invoke(); status != tflite.OK {
		d.mu.Unlock()
		getLogger().Error("tensor invoke failed", "status", int(status))
		return Result{Annotated: frame}
	}
	elapsed := time.Since(start)

	output := d.interpreter.GetOutputTensor(0)
	raw := make([]float32, len(output.Float32s()))
	copy(raw, output.Float32s())
	layout, stride := d.layout, d.stride
	d.mu.Unlock()

	var letterboxBoxes []Box
	switch layout {
	case LayoutPreNMS:
		letterboxBoxes = decodePreNMS(raw, stride, d.threshold)
	case LayoutRawAnchors:
		letterboxBoxes = decodeRawAnchors(raw, stride, d.threshold)
	}

	boxes := make([]Box, len(letterboxBoxes))
	for i, b := range letterboxBoxes {
		boxes[i] = params.ToOriginal(b, width, height)
	}

	d.metrics.ObserveInference(elapsed.Seconds())
	d.metrics.AddDetections(len(boxes))

	result := Result{
		Count:           len(boxes),
		Boxes:           boxes,
		InferenceTimeMs: float64(elapsed.Microseconds()) / 1000.0,
	}
	if annotate {
		result.Annotated = Annotate(frame, boxes, fpsFromMs(result.InferenceTimeMs), result.Count)
	}
	return result
}

// fillInputTensor writes the letterboxed frame into the NHWC input tensor
// as RGB normalized to [0, 1].
func fillInputTensor(dst []float32, img *image.NRGBA, size int) {
	idx := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := img.NRGBAAt(x, y)
			dst[idx] = float32(c.R) / 255.0
			dst[idx+1] = float32(c.G) / 255.0
			dst[idx+2] = float32(c.B) / 255.0
			idx += 3
		}
	}
}

func fpsFromMs(ms float64) int {
	if ms <= 0 {
		return 0
	}
	return int(1000.0 / ms)
}
