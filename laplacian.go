package edgemap

import (
	"image"

	"github.com/esimov/edgemap/utils"
)

// kernelLaplacian is the 3x3 aperture second derivative (d2/dx2 + d2/dy2).
var kernelLaplacian = kernel{
	{2, 0, 2},
	{0, -8, 0},
	{2, 0, 2},
}

// LaplacianFilter returns the absolute second derivative response of src.
func LaplacianFilter(src *image.Gray) *image.Gray {
	return absSaturate(convolve(src, kernelLaplacian, utils.Reflect101))
}
