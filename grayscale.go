package edgemap

import (
	"fmt"
	"image"
	"strings"
)

// ChannelOrder tells in which order the color samples of a 3 or 4 channel pixel are stored.
// Alpha, when present, is always the last sample.
type ChannelOrder int

const (
	OrderRGB ChannelOrder = iota
	OrderBGR
)

func (o ChannelOrder) String() string {
	if o == OrderBGR {
		return "bgr"
	}
	return "rgb"
}

// ParseChannelOrder accepts "rgb", "rgba", "bgr" and "bgra" in any letter case.
func ParseChannelOrder(s string) (ChannelOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rgb", "rgba", "":
		return OrderRGB, nil
	case "bgr", "bgra":
		return OrderBGR, nil
	}
	return OrderRGB, fmt.Errorf("unknown channel order %q", s)
}

// Set implements pflag.Value.
func (o *ChannelOrder) Set(s string) error {
	v, err := ParseChannelOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Type implements pflag.Value.
func (o *ChannelOrder) Type() string {
	return "order"
}

// indices returns the sample positions of red, green and blue.
func (o ChannelOrder) indices() (r, g, b int) {
	if o == OrderBGR {
		return 2, 1, 0
	}
	return 0, 1, 2
}

// Fixed point luminance weights (0.299, 0.587, 0.114) scaled by 1<<14.
const (
	lumShift = 14
	lumR     = 4899
	lumG     = 9617
	lumB     = 1868
)

func luminance(r, g, b uint8) uint8 {
	return uint8((int(r)*lumR + int(g)*lumG + int(b)*lumB + 1<<(lumShift-1)) >> lumShift)
}

// ToGrayscale converts the view into a single channel frame.
// A single channel view is passed through without copying: the returned
// image shares its memory with the view.
func ToGrayscale(view *PixelBuffer, order ChannelOrder) (*image.Gray, error) {
	if view.Empty() {
		return nil, ErrEmptyBuffer
	}
	switch view.Channels {
	case 1:
		return view.Gray()
	case 3, 4:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChannels, view.Channels)
	}

	ri, gi, bi := order.indices()
	ch := view.Channels
	dst := image.NewGray(view.Bounds())
	for y := 0; y < view.Height; y++ {
		src := view.Row(y)
		row := dst.Pix[y*dst.Stride : y*dst.Stride+view.Width]
		for x := range row {
			px := src[x*ch : x*ch+ch]
			row[x] = luminance(px[ri], px[gi], px[bi])
		}
	}
	return dst, nil
}

// FromGrayscale writes a single channel frame into dst, replicating the
// luminance into every color sample. Alpha is set to fully opaque.
// Layouts other than 1, 3 or 4 channels receive the plane unchanged
// in the first Width bytes of every row.
func FromGrayscale(gray *image.Gray, dst *PixelBuffer) error {
	b := gray.Bounds()
	if b.Dx() != dst.Width || b.Dy() != dst.Height {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch, b.Dx(), b.Dy(), dst.Width, dst.Height)
	}

	w := dst.Width
	switch dst.Channels {
	case 1, 3, 4:
		if err := dst.checkBounds(); err != nil {
			return err
		}
	default:
		if dst.Stride < w || len(dst.Pix) < (dst.Height-1)*dst.Stride+w {
			return fmt.Errorf("%w: cannot hold a %dx%d plane", ErrBufferTooSmall, w, dst.Height)
		}
	}

	for y := 0; y < dst.Height; y++ {
		src := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		off := y * dst.Stride
		switch dst.Channels {
		case 3:
			row := dst.Pix[off : off+w*3]
			for x, v := range src {
				row[x*3], row[x*3+1], row[x*3+2] = v, v, v
			}
		case 4:
			row := dst.Pix[off : off+w*4]
			for x, v := range src {
				row[x*4], row[x*4+1], row[x*4+2], row[x*4+3] = v, v, v, 0xff
			}
		default:
			copy(dst.Pix[off:off+w], src)
		}
	}
	return nil
}
