package edgemap

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newColumnsImage returns a 5x5 frame with every row set to cols.
func newColumnsImage(cols ...uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, len(cols), 5))
	for y := 0; y < 5; y++ {
		copy(img.Pix[y*img.Stride:], cols)
	}
	return img
}

func newUniformImage(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func row(img *image.Gray, y int) []uint8 {
	return img.Pix[y*img.Stride : y*img.Stride+img.Bounds().Dx()]
}

func TestBlur_GaussianKernel(t *testing.T) {
	kern := gaussianKernel(blurKernelSize, blurSigma)
	require.Len(t, kern, blurKernelSize)

	sum := 0.0
	for i, v := range kern {
		sum += v
		assert.InDelta(t, kern[len(kern)-1-i], v, 1e-12)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, kern[2], kern[1])
	assert.Greater(t, kern[1], kern[0])
}

func TestBlur_UniformImageIsUnchanged(t *testing.T) {
	src := newUniformImage(9, 7, 77)
	dst := GaussianBlur(src)
	assert.Equal(t, src.Pix, dst.Pix)
}

func TestBlur_StepProfile(t *testing.T) {
	src := newColumnsImage(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255)
	dst := GaussianBlur(src)
	for y := 0; y < 5; y++ {
		r := row(dst, y)
		assert.Equal(t, []uint8{31, 90, 165, 224}, r[8:12])
		assert.Zero(t, r[0])
		assert.Equal(t, uint8(255), r[19])
	}
}

func TestSobel_HorizontalStep(t *testing.T) {
	dst := SobelFilter(newColumnsImage(0, 0, 10, 10, 10))
	for y := 0; y < 5; y++ {
		assert.Equal(t, []uint8{0, 20, 20, 0, 0}, row(dst, y))
	}
}

func TestSobel_SaturatesStrongGradients(t *testing.T) {
	// |gx| = 4*255 saturates to 255, half of it rounds to even
	dst := SobelFilter(newColumnsImage(0, 0, 255, 255, 255))
	assert.Equal(t, []uint8{0, 128, 128, 0, 0}, row(dst, 2))
}

func TestLaplacian_HorizontalStep(t *testing.T) {
	dst := LaplacianFilter(newColumnsImage(0, 0, 10, 10, 10))
	for y := 0; y < 5; y++ {
		assert.Equal(t, []uint8{0, 40, 40, 0, 0}, row(dst, y))
	}
}

func TestCanny_UniformImageHasNoEdges(t *testing.T) {
	dst := CannyFilter(newUniformImage(8, 8, 200), 10, 20)
	assert.Equal(t, make([]uint8, 64), dst.Pix)
}

func TestCanny_SwappedThresholds(t *testing.T) {
	src := GaussianBlur(newColumnsImage(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255))
	want := CannyFilter(src, 50, 150)
	got := CannyFilter(src, 150, 50)
	assert.Equal(t, want.Pix, got.Pix)

	for y := 0; y < 5; y++ {
		r := row(want, y)
		for x, v := range r {
			if x == 9 {
				assert.Equal(t, uint8(edgeSet), v)
				continue
			}
			assert.Zero(t, v, "column %d", x)
		}
	}
}

func TestCanny_HighThresholdAboveGradients(t *testing.T) {
	src := GaussianBlur(newColumnsImage(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 255, 255, 255, 255, 255, 255, 255, 255, 255, 255))
	dst := CannyFilter(src, 100, 1e6)
	assert.Equal(t, make([]uint8, len(dst.Pix)), dst.Pix)
}

func TestCanny_HysteresisFollowsWeakEdges(t *testing.T) {
	// a vertical ridge at column 3: strong on rows 0-2, weak on rows 3-5,
	// then a gap and a weak segment which is not connected to anything strong
	const w, h = 8, 10
	gx, gy := newPlane16(w, h), newPlane16(w, h)
	for y, v := range []int16{400, 400, 400, 200, 200, 200, 0, 200, 200, 200} {
		gx.pix[y*w+3] = v
	}

	dst := cannyFromGradients(gx, gy, 100, 300, true)
	for y := 0; y < h; y++ {
		for x, v := range row(dst, y) {
			if x == 3 && y < 6 {
				assert.Equal(t, uint8(edgeSet), v, "(%d, %d)", x, y)
				continue
			}
			assert.Zero(t, v, "(%d, %d)", x, y)
		}
	}

	// without a strong seed nothing survives
	dst = cannyFromGradients(gx, gy, 100, 500, true)
	assert.Equal(t, make([]uint8, w*h), dst.Pix)
}

func TestCanny_L1Magnitude(t *testing.T) {
	gx, gy := newPlane16(1, 1), newPlane16(1, 1)
	gx.pix[0], gy.pix[0] = 100, 100

	// |dx|+|dy| = 200 passes the high threshold, the L2 norm of 141 does not
	assert.Equal(t, []uint8{edgeSet}, cannyFromGradients(gx, gy, 50, 150, false).Pix)
	assert.Equal(t, []uint8{0}, cannyFromGradients(gx, gy, 50, 150, true).Pix)
}

func TestNativeEngine_L1Canny(t *testing.T) {
	src := newColumnsImage(0, 0, 0, 255, 0, 0, 0)
	got, err := NativeEngine{}.Detect(src, Canny, Params{ThresholdLow: 50, ThresholdHigh: 150, L1Gradient: true})
	require.NoError(t, err)
	assert.Equal(t, CannyFilterL1(src, 50, 150).Pix, got.Pix)
	assert.Equal(t, []uint8{0, 0, edgeSet, 0, edgeSet, 0, 0}, row(got, 2))
}

func TestNativeEngine_RejectsEmptyFrames(t *testing.T) {
	empty := image.NewGray(image.Rect(0, 0, 0, 0))
	_, err := NativeEngine{}.Smooth(empty)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
	_, err = NativeEngine{}.Detect(empty, Canny, Params{})
	assert.ErrorIs(t, err, ErrEmptyBuffer)
}
