package edgemap

import (
	"image"
	"math"

	"github.com/esimov/edgemap/utils"
)

// The denoising step always runs with the same kernel: edge operators are
// tuned for this amount of smoothing.
const (
	blurKernelSize = 5
	blurSigma      = 1.5
)

// gaussianKernel returns a normalized 1D Gaussian kernel with the given size and sigma.
func gaussianKernel(size int, sigma float64) []float64 {
	kern := make([]float64, size)
	radius := size / 2
	sum := 0.0
	for i := range kern {
		d := float64(i - radius)
		kern[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kern[i]
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern
}

// GaussianBlur smooths src with a separable 5x5 Gaussian (sigma 1.5).
// Borders are mirrored without repeating the edge pixel.
func GaussianBlur(src *image.Gray) *image.Gray {
	return separableBlur(src, gaussianKernel(blurKernelSize, blurSigma))
}

func separableBlur(src *image.Gray, kern []float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	radius := len(kern) / 2
	tmp := make([]float64, w*h)

	// Horizontal pass.
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			var sum float64
			for k, kv := range kern {
				sum += float64(row[utils.Reflect101(x+k-radius, w)]) * kv
			}
			tmp[y*w+x] = sum
		}
	}

	// Vertical pass.
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, kv := range kern {
				sum += tmp[utils.Reflect101(y+k-radius, h)*w+x] * kv
			}
			dst.Pix[y*dst.Stride+x] = utils.Saturate8(sum)
		}
	}
	return dst
}
