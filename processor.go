package edgemap

import (
	"context"
	"fmt"
	"image"

	"github.com/esimov/edgemap/utils"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// Processor options
type Processor struct {
	Algorithm     Algorithm
	ThresholdLow  float64
	ThresholdHigh float64
	// ChannelOrder tells how 3 and 4 channel buffers store their color samples.
	ChannelOrder ChannelOrder
	// Engine runs the numeric transforms; DefaultEngine() is used when nil.
	Engine Engine

	// The options below are only used when processing encoded images (see ProcessImage).
	OutputChannels  int
	EnhanceContrast bool
	MaxSize         int
	Quality         int
	Spinner         *utils.Spinner
}

// NewProcessor returns a Processor running Canny with the default thresholds.
func NewProcessor() *Processor {
	return &Processor{
		Algorithm:      Canny,
		ThresholdLow:   DefaultThresholdLow,
		ThresholdHigh:  DefaultThresholdHigh,
		ChannelOrder:   OrderRGB,
		OutputChannels: 4,
		Quality:        100,
	}
}

func (p *Processor) engine() Engine {
	if p.Engine == nil {
		return DefaultEngine()
	}
	return p.Engine
}

// Process locks both bitmaps, writes the edge map of in into out and unlocks them again.
// Any failure is logged and reported as false; out must not be read after a false result.
// Unknown algorithm values are handled as Canny.
func (p *Processor) Process(
	ctx context.Context,
	in, out Bitmap,
	alg Algorithm,
	thresholdLow, thresholdHigh float64,
) bool {
	err := p.Run(ctx, in, out, alg, thresholdLow, thresholdHigh)
	if err != nil {
		logger.Errorf(ctx, "edge detection failed: %v", err)
		return false
	}
	return true
}

// Run is Process returning the failure reason instead of a boolean.
func (p *Processor) Run(
	ctx context.Context,
	in, out Bitmap,
	alg Algorithm,
	thresholdLow, thresholdHigh float64,
) (_err error) {
	logger.Debugf(ctx, "Run(ctx, %s, %v, %v)", alg, thresholdLow, thresholdHigh)
	defer func() { logger.Debugf(ctx, "/Run(ctx, %s, %v, %v): %v", alg, thresholdLow, thresholdHigh, _err) }()

	// Both bitmaps are checked before any of them gets locked.
	if err := preflight(in, "input"); err != nil {
		return err
	}
	if err := preflight(out, "output"); err != nil {
		return err
	}

	inScope, err := Acquire(ctx, in)
	if err != nil {
		return fmt.Errorf("unable to acquire the input bitmap: %w", err)
	}
	defer releaseScope(ctx, inScope, "input")

	outScope, err := Acquire(ctx, out)
	if err != nil {
		return fmt.Errorf("unable to acquire the output bitmap: %w", err)
	}
	defer releaseScope(ctx, outScope, "output")

	inView, err := inScope.View()
	if err != nil {
		return processingErr("input view", err)
	}
	outView, err := outScope.View()
	if err != nil {
		return processingErr("output view", err)
	}
	return p.transform(ctx, inView, outView, alg, Params{
		ThresholdLow:  thresholdLow,
		ThresholdHigh: thresholdHigh,
	})
}

// preflight rejects bitmaps which Acquire would refuse, without locking them.
func preflight(b Bitmap, name string) error {
	info, err := b.Info()
	if err != nil {
		return acquisitionErr(name+" info", err)
	}
	if info.Width <= 0 || info.Height <= 0 {
		return validationErr(name, ErrEmptyBuffer)
	}
	if info.Format.Channels() == 0 {
		return validationErr(name, fmt.Errorf("%w: %s", ErrUnsupportedFormat, info.Format))
	}
	return nil
}

// ProcessView is Process for views which the caller already borrowed and keeps valid.
func (p *Processor) ProcessView(
	ctx context.Context,
	in, out *PixelBuffer,
	alg Algorithm,
	thresholdLow, thresholdHigh float64,
) bool {
	err := p.RunView(ctx, in, out, alg, thresholdLow, thresholdHigh)
	if err != nil {
		logger.Errorf(ctx, "edge detection failed: %v", err)
		return false
	}
	return true
}

// RunView is ProcessView returning the failure reason instead of a boolean.
func (p *Processor) RunView(
	ctx context.Context,
	in, out *PixelBuffer,
	alg Algorithm,
	thresholdLow, thresholdHigh float64,
) error {
	return p.runView(ctx, in, out, alg, Params{
		ThresholdLow:  thresholdLow,
		ThresholdHigh: thresholdHigh,
	})
}

func (p *Processor) runView(ctx context.Context, in, out *PixelBuffer, alg Algorithm, params Params) error {
	if in.Empty() {
		return validationErr("input", ErrEmptyBuffer)
	}
	if err := in.Validate(); err != nil {
		return validationErr("input", err)
	}
	if out.Empty() {
		return validationErr("output", ErrEmptyBuffer)
	}
	return p.transform(ctx, in, out, alg, params)
}

// frameParams is the preview setup: Canny with the default thresholds and
// the L1 gradient magnitude, straight on the grayscale frame.
var frameParams = Params{
	ThresholdLow:  DefaultThresholdLow,
	ThresholdHigh: DefaultThresholdHigh,
	L1Gradient:    true,
	SkipSmooth:    true,
}

// ProcessFrame replaces the content of frame with its Canny edge map.
// Unlike Process, the frame is not smoothed and the gradients are rated
// by their L1 magnitude.
func (p *Processor) ProcessFrame(ctx context.Context, frame *PixelBuffer) bool {
	if err := p.runView(ctx, frame, frame, Canny, frameParams); err != nil {
		logger.Errorf(ctx, "frame edge detection failed: %v", err)
		return false
	}
	return true
}

// transform runs grayscale -> smooth -> detect -> recolor. A panic inside
// any of the steps is turned into a processing error so that the caller
// still gets to release its scopes.
func (p *Processor) transform(
	ctx context.Context,
	in, out *PixelBuffer,
	alg Algorithm,
	params Params,
) (_err error) {
	defer func() {
		if r := recover(); r != nil {
			_err = processingErr("transform", fmt.Errorf("recovered from panic: %v", r))
		}
	}()

	if in.Width != out.Width || in.Height != out.Height {
		return validationErr("dimensions", fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, in, out))
	}

	gray, err := ToGrayscale(in, p.ChannelOrder)
	if err != nil {
		return validationErr("grayscale", err)
	}

	edges, err := p.edges(gray, alg, params)
	if err != nil {
		return err
	}

	if err := FromGrayscale(edges, out); err != nil {
		return validationErr("recolor", err)
	}
	logger.Debugf(ctx, "edge detection completed with algorithm: %s", alg.normalize())
	return nil
}

// edges smooths gray, unless params tell otherwise, and applies the selected edge operator.
func (p *Processor) edges(gray *image.Gray, alg Algorithm, params Params) (*image.Gray, error) {
	engine := p.engine()
	src := gray
	if !params.SkipSmooth {
		blurred, err := engine.Smooth(gray)
		if err != nil {
			return nil, processingErr("smooth", fmt.Errorf("%s: %w", engine, err))
		}
		src = blurred
	}
	edges, err := engine.Detect(src, alg, params)
	if err != nil {
		return nil, processingErr("detect", fmt.Errorf("%s: %w", engine, err))
	}
	if edges.Bounds().Size() != gray.Bounds().Size() {
		return nil, processingErr("detect", fmt.Errorf("%s returned a %v frame for a %v input", engine, edges.Bounds().Size(), gray.Bounds().Size()))
	}
	return edges, nil
}
