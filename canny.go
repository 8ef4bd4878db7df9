package edgemap

import (
	"image"
	"math"

	"github.com/esimov/edgemap/utils"
)

const (
	edgeSet = 0xff

	// tan(22.5°), used to quantize the gradient direction.
	tan22 = 0.4142135623730950488016887242097

	// Thresholds are capped to the largest value a 16 bit gradient can reach.
	maxCannyThreshold = 32767
)

// CannyFilter runs the Canny edge detector on src using 3x3 gradients and the
// L2 gradient magnitude. The result is 0 or 255 per pixel.
func CannyFilter(src *image.Gray, low, high float64) *image.Gray {
	gx := convolve(src, kernelX, utils.Replicate)
	gy := convolve(src, kernelY, utils.Replicate)
	return cannyFromGradients(gx, gy, low, high, true)
}

// CannyFilterL1 is CannyFilter rating the gradients by |dx|+|dy|.
func CannyFilterL1(src *image.Gray, low, high float64) *image.Gray {
	gx := convolve(src, kernelX, utils.Replicate)
	gy := convolve(src, kernelY, utils.Replicate)
	return cannyFromGradients(gx, gy, low, high, false)
}

// Pixel classes produced by non maximum suppression.
const (
	cannyNone uint8 = iota
	cannyWeak
	cannyStrong
)

// cannyFromGradients performs non maximum suppression, double thresholding
// and hysteresis over precomputed horizontal and vertical gradients.
// The gradient magnitude is the L2 norm when l2 is set, |dx|+|dy| otherwise.
func cannyFromGradients(gx, gy *plane16, low, high float64, l2 bool) *image.Gray {
	if low > high {
		low, high = high, low
	}
	low = utils.Min(low, maxCannyThreshold)
	high = utils.Min(high, maxCannyThreshold)

	w, h := gx.width, gx.height
	mag := make([]float64, w*h)
	for i := range mag {
		dx, dy := float64(gx.pix[i]), float64(gy.pix[i])
		if l2 {
			mag[i] = math.Sqrt(dx*dx + dy*dy)
		} else {
			mag[i] = math.Abs(dx) + math.Abs(dy)
		}
	}
	// Magnitude outside of the frame counts as zero.
	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	class := make([]uint8, w*h)
	stack := make([]int, 0, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			dx, dy := int32(gx.pix[i]), int32(gy.pix[i])
			xs, ys := math.Abs(float64(dx)), math.Abs(float64(dy))
			tg22x := xs * tan22

			var isMax bool
			switch {
			case ys < tg22x:
				isMax = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ys > tg22x+2*xs:
				isMax = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				s := 1
				if (dx ^ dy) < 0 {
					s = -1
				}
				isMax = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				class[i] = cannyStrong
				stack = append(stack, i)
			} else {
				class[i] = cannyWeak
			}
		}
	}

	// Hysteresis: grow strong edges into 8-connected weak pixels.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == cannyWeak {
					class[j] = cannyStrong
					stack = append(stack, j)
				}
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range row {
			if class[y*w+x] == cannyStrong {
				row[x] = edgeSet
			}
		}
	}
	return dst
}
