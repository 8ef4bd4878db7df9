package edgemap

import (
	"image"
	"math"

	"github.com/esimov/edgemap/utils"
)

// 8 bit CIE L*a*b* samples follow the OpenCV layout: L is scaled from
// [0, 100] to [0, 255], a and b are offset by 128. The white point is D65.
const (
	whiteX = 0.950456
	whiteZ = 1.088754

	labEpsilon = 0.008856
	labKappa   = 903.3
)

// srgbLinear maps an 8 bit sRGB sample to its linear intensity.
var srgbLinear = func() (lut [256]float64) {
	for i := range lut {
		c := float64(i) / 255
		if c <= 0.04045 {
			lut[i] = c / 12.92
		} else {
			lut[i] = math.Pow((c+0.055)/1.055, 2.4)
		}
	}
	return lut
}()

func srgbEncode(c float64) uint8 {
	c = utils.Clamp(c, 0, 1)
	if c <= 0.0031308 {
		c *= 12.92
	} else {
		c = 1.055*math.Pow(c, 1/2.4) - 0.055
	}
	return utils.Saturate8(c * 255)
}

func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116
}

func labFInv(f float64) float64 {
	if t := f * f * f; t > labEpsilon {
		return t
	}
	return (f - 16.0/116) / 7.787
}

// rgbToLab converts an sRGB color into 8 bit L*a*b* samples.
func rgbToLab(r, g, b uint8) (l, a, bb uint8) {
	lr, lg, lb := srgbLinear[r], srgbLinear[g], srgbLinear[b]
	x := (0.412453*lr + 0.357580*lg + 0.180423*lb) / whiteX
	y := 0.212671*lr + 0.715160*lg + 0.072169*lb
	z := (0.019334*lr + 0.119193*lg + 0.950227*lb) / whiteZ

	fy := labF(y)
	light := labKappa * y
	if y > labEpsilon {
		light = 116*fy - 16
	}
	return utils.Saturate8(light * 255 / 100),
		utils.Saturate8(500*(labF(x)-fy) + 128),
		utils.Saturate8(200*(fy-labF(z)) + 128)
}

// labToRGB is the inverse of rgbToLab. Colors outside of the sRGB gamut are clipped.
func labToRGB(l, a, bb uint8) (r, g, b uint8) {
	light := float64(l) * 100 / 255
	fy := (light + 16) / 116
	y := light / labKappa
	if light > labKappa*labEpsilon {
		y = fy * fy * fy
	}
	x := labFInv(fy+(float64(a)-128)/500) * whiteX
	z := labFInv(fy-(float64(bb)-128)/200) * whiteZ

	return srgbEncode(3.240479*x - 1.53715*y - 0.498535*z),
		srgbEncode(-0.969256*x + 1.875991*y + 0.041556*z),
		srgbEncode(0.055648*x - 0.204043*y + 1.057311*z)
}

// equalizeLightness runs CLAHE on the lightness of src and converts the result
// back to an opaque sRGB frame. The chroma samples are left untouched.
func equalizeLightness(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	light := image.NewGray(image.Rect(0, 0, w, h))
	chroma := make([]uint8, 2*w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y):]
			i := y*w + x
			light.Pix[y*light.Stride+x], chroma[2*i], chroma[2*i+1] = rgbToLab(px[0], px[1], px[2])
		}
	}

	light = CLAHE(light, claheClipLimit, claheGridSize)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			px := dst.Pix[y*dst.Stride+x*4:]
			px[0], px[1], px[2] = labToRGB(light.Pix[y*light.Stride+x], chroma[2*i], chroma[2*i+1])
			px[3] = 0xff
		}
	}
	return dst
}
