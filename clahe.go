package edgemap

import (
	"image"

	"github.com/esimov/edgemap/utils"
)

const (
	claheClipLimit = 4.0
	claheGridSize  = 8
	claheBins      = 256
)

// CLAHE applies contrast limited adaptive histogram equalization to src.
// The image is split into a grid x grid set of tiles, each tile gets its own
// clipped histogram mapping and pixels are bilinearly interpolated between
// the mappings of the four closest tile centers.
func CLAHE(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tilesX := utils.Clamp(grid, 1, w)
	tilesY := utils.Clamp(grid, 1, h)

	// tile edges along each axis
	xs := make([]int, tilesX+1)
	for i := range xs {
		xs[i] = i * w / tilesX
	}
	ys := make([]int, tilesY+1)
	for i := range ys {
		ys[i] = i * h / tilesY
	}

	luts := make([][claheBins]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			luts[ty*tilesX+tx] = tileLUT(src, image.Rect(xs[tx], ys[ty], xs[tx+1], ys[ty+1]), clipLimit)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		ty0, ty1, fy := neighbourTiles(y, ys)
		for x := 0; x < w; x++ {
			tx0, tx1, fx := neighbourTiles(x, xs)
			v := src.Pix[y*src.Stride+x]

			top := (1-fx)*float64(luts[ty0*tilesX+tx0][v]) + fx*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-fx)*float64(luts[ty1*tilesX+tx0][v]) + fx*float64(luts[ty1*tilesX+tx1][v])
			dst.Pix[y*dst.Stride+x] = utils.Saturate8((1-fy)*top + fy*bottom)
		}
	}
	return dst
}

// tileLUT builds the clipped, equalized mapping of one tile.
func tileLUT(src *image.Gray, r image.Rectangle, clipLimit float64) [claheBins]uint8 {
	var hist [claheBins]int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, v := range src.Pix[y*src.Stride+r.Min.X : y*src.Stride+r.Max.X] {
			hist[v]++
		}
	}

	area := r.Dx() * r.Dy()
	var lut [claheBins]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	if clipLimit > 0 {
		limit := utils.Max(int(clipLimit*float64(area)/claheBins), 1)
		excess := 0
		for i := range hist {
			if hist[i] > limit {
				excess += hist[i] - limit
				hist[i] = limit
			}
		}
		batch := excess / claheBins
		residual := excess - batch*claheBins
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := utils.Max(claheBins/residual, 1)
			for i := 0; i < claheBins && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	scale := float64(claheBins-1) / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = utils.Saturate8(float64(sum) * scale)
	}
	return lut
}

// neighbourTiles returns the two tiles whose centers surround position p
// along one axis and the interpolation weight of the second one.
func neighbourTiles(p int, edges []int) (int, int, float64) {
	n := len(edges) - 1
	center := func(i int) float64 {
		return float64(edges[i]+edges[i+1]-1) / 2
	}
	pos := float64(p)
	if pos <= center(0) {
		return 0, 0, 0
	}
	if pos >= center(n-1) {
		return n - 1, n - 1, 0
	}
	i := 0
	for i < n-2 && pos >= center(i+1) {
		i++
	}
	c0, c1 := center(i), center(i+1)
	return i, i + 1, (pos - c0) / (c1 - c0)
}
