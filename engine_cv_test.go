//go:build with_cv
// +build with_cv

package edgemap

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayFrames(t *testing.T) map[string]*image.Gray {
	t.Helper()
	frames := make(map[string]*image.Gray)
	for name, bmp := range map[string]*MemoryBitmap{
		"step":    newStepBitmap(imgWidth, imgHeight, imgWidth/2, FormatGray8),
		"pattern": newPatternBitmap(imgWidth, imgHeight, FormatGray8),
	} {
		view, err := NewPixelBuffer(imgWidth, imgHeight, 1, 0, bmp.Pix())
		require.NoError(t, err)
		gray, err := ToGrayscale(view, OrderRGB)
		require.NoError(t, err)
		frames[name] = gray
	}
	return frames
}

func assertPixInDelta(t *testing.T, want, got *image.Gray, delta float64) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	for i := range want.Pix {
		assert.InDelta(t, want.Pix[i], got.Pix[i], delta, "pixel (%d, %d)", i%want.Stride, i/want.Stride)
	}
}

func TestDefaultEngine_IsOpenCV(t *testing.T) {
	assert.Equal(t, "opencv", DefaultEngine().String())
}

func TestCVEngine_MatchesNativeEngine(t *testing.T) {
	cv, native := CVEngine{}, NativeEngine{}
	params := Params{ThresholdLow: DefaultThresholdLow, ThresholdHigh: DefaultThresholdHigh}

	for name, gray := range grayFrames(t) {
		t.Run(name, func(t *testing.T) {
			smoothed, err := native.Smooth(gray)
			require.NoError(t, err)
			blurred, err := cv.Smooth(gray)
			require.NoError(t, err)
			assertPixInDelta(t, smoothed, blurred, 1)

			// both engines detect on the same smoothed frame
			for _, alg := range []Algorithm{Sobel, Laplacian} {
				want, err := native.Detect(smoothed, alg, params)
				require.NoError(t, err)
				got, err := cv.Detect(smoothed, alg, params)
				require.NoError(t, err)
				assertPixInDelta(t, want, got, 1)
			}

			for _, l1 := range []bool{false, true} {
				params := params
				params.L1Gradient = l1
				want, err := native.Detect(smoothed, Canny, params)
				require.NoError(t, err)
				got, err := cv.Detect(smoothed, Canny, params)
				require.NoError(t, err)
				assert.Equal(t, want.Pix, got.Pix, "l1: %v", l1)
			}
		})
	}
}

func TestCVEngine_UnknownAlgorithmIsCanny(t *testing.T) {
	params := Params{ThresholdLow: DefaultThresholdLow, ThresholdHigh: DefaultThresholdHigh}
	for name, gray := range grayFrames(t) {
		canny, err := CVEngine{}.Detect(gray, Canny, params)
		require.NoError(t, err, name)
		unknown, err := CVEngine{}.Detect(gray, Algorithm(99), params)
		require.NoError(t, err, name)
		assert.Equal(t, canny.Pix, unknown.Pix, name)
	}
}

func TestCVEngine_ContrastKeepsGrayAndIsOpaque(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for i := 0; i < len(src.Pix); i += 4 {
		v := uint8((i*37 + (i/7)*101) % 256)
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = v, v, v, uint8(i)
	}

	dst, err := CVEngine{}.Contrast(src)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		assert.InDelta(t, dst.Pix[i], dst.Pix[i+1], 1)
		assert.InDelta(t, dst.Pix[i], dst.Pix[i+2], 1)
		assert.Equal(t, uint8(0xff), dst.Pix[i+3])
	}

	_, err = CVEngine{}.Contrast(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}

func TestCVEngine_ProcessFrame(t *testing.T) {
	frameBmp := newPatternBitmap(imgWidth, imgHeight, FormatRGBA8888)
	frame, err := NewPixelBuffer(imgWidth, imgHeight, 4, 0, frameBmp.Pix())
	require.NoError(t, err)
	gray, err := ToGrayscale(frame, OrderRGB)
	require.NoError(t, err)
	want := CannyFilterL1(gray, DefaultThresholdLow, DefaultThresholdHigh)

	p := NewProcessor()
	p.Engine = CVEngine{}
	require.True(t, p.ProcessFrame(context.Background(), frame))
	for i, v := range want.Pix {
		assert.Equal(t, v, frame.Pix[i*4], "pixel %d", i)
	}
}
