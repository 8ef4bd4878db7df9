package edgemap

import (
	"image"

	"github.com/esimov/edgemap/utils"
)

type kernel [3][3]int32

var (
	kernelX = kernel{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}

	kernelY = kernel{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// plane16 is a single channel frame of signed 16 bit samples,
// wide enough to hold gradient responses without clipping.
type plane16 struct {
	width, height int
	pix           []int16
}

func newPlane16(width, height int) *plane16 {
	return &plane16{
		width:  width,
		height: height,
		pix:    make([]int16, width*height),
	}
}

func (p *plane16) at(x, y int) int16 {
	return p.pix[y*p.width+x]
}

// convolve applies a 3x3 kernel to src. Out of range samples are fetched
// through border, which maps an index into [0, n).
func convolve(src *image.Gray, k kernel, border func(i, n int) int) *plane16 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := newPlane16(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum int32
			for ky := 0; ky < 3; ky++ {
				row := src.Pix[border(y+ky-1, h)*src.Stride:]
				for kx := 0; kx < 3; kx++ {
					if k[ky][kx] == 0 {
						continue
					}
					sum += int32(row[border(x+kx-1, w)]) * k[ky][kx]
				}
			}
			dst.pix[y*w+x] = int16(utils.Clamp(sum, -32768, 32767))
		}
	}
	return dst
}

// absSaturate returns |p| saturated into the 8 bit range.
func absSaturate(p *plane16) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+p.width]
		for x := range row {
			row[x] = utils.Saturate8(utils.Abs(int32(p.at(x, y))))
		}
	}
	return dst
}

// SobelFilter detects image edges by averaging the absolute horizontal
// and vertical gradient responses.
// See https://en.wikipedia.org/wiki/Sobel_operator
func SobelFilter(src *image.Gray) *image.Gray {
	gx := absSaturate(convolve(src, kernelX, utils.Reflect101))
	gy := absSaturate(convolve(src, kernelY, utils.Reflect101))
	return addWeighted(gx, 0.5, gy, 0.5)
}

// addWeighted computes a*alpha + b*beta per pixel, rounded and saturated.
func addWeighted(a *image.Gray, alpha float64, b *image.Gray, beta float64) *image.Gray {
	dst := image.NewGray(a.Bounds())
	w := a.Bounds().Dx()
	for y := 0; y < a.Bounds().Dy(); y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w]
		rb := b.Pix[y*b.Stride : y*b.Stride+w]
		rd := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range rd {
			rd[x] = utils.Saturate8(float64(ra[x])*alpha + float64(rb[x])*beta)
		}
	}
	return dst
}
