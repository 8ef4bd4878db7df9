package edgemap

import (
	"fmt"
	"image"
)

// Engine implements the numeric part of the pipeline. Implementations
// must be stateless so one value can serve concurrent calls.
type Engine interface {
	fmt.Stringer
	// Smooth denoises src before edge detection.
	Smooth(src *image.Gray) (*image.Gray, error)
	// Detect applies the selected edge operator and returns a frame of the same size.
	Detect(src *image.Gray, alg Algorithm, params Params) (*image.Gray, error)
	// Contrast equalizes the L*a*b* lightness of src with CLAHE and returns
	// an opaque frame of the same size.
	Contrast(src *image.RGBA) (*image.RGBA, error)
}

// NativeEngine is the pure Go Engine.
type NativeEngine struct{}

var _ Engine = NativeEngine{}

func (NativeEngine) String() string {
	return "native"
}

func (NativeEngine) Smooth(src *image.Gray) (*image.Gray, error) {
	if src.Bounds().Empty() {
		return nil, ErrEmptyBuffer
	}
	return GaussianBlur(src), nil
}

func (NativeEngine) Detect(src *image.Gray, alg Algorithm, params Params) (*image.Gray, error) {
	if src.Bounds().Empty() {
		return nil, ErrEmptyBuffer
	}
	switch alg.normalize() {
	case Sobel:
		return SobelFilter(src), nil
	case Laplacian:
		return LaplacianFilter(src), nil
	default:
		if params.L1Gradient {
			return CannyFilterL1(src, params.ThresholdLow, params.ThresholdHigh), nil
		}
		return CannyFilter(src, params.ThresholdLow, params.ThresholdHigh), nil
	}
}

func (NativeEngine) Contrast(src *image.RGBA) (*image.RGBA, error) {
	if src.Bounds().Empty() {
		return nil, ErrEmptyBuffer
	}
	return equalizeLightness(src), nil
}
