package edgemap

import (
	"errors"
	"fmt"
	"image"
)

var (
	errAlreadyLocked = errors.New("bitmap is already locked")
	errNotLocked     = errors.New("bitmap is not locked")
)

// MemoryBitmap is an in-process Bitmap backed by a plain byte slice.
// It keeps track of its lock state so callers (and tests) can verify
// that every lock got paired with an unlock. It is not safe for concurrent use.
type MemoryBitmap struct {
	info BitmapInfo
	pix  []uint8

	locked      bool
	LockCount   int
	UnlockCount int

	// FailInfo and FailLock, when set, are returned by Info and LockPixels respectively.
	FailInfo error
	FailLock error
}

var _ Bitmap = (*MemoryBitmap)(nil)

// NewMemoryBitmap allocates a zeroed, tightly packed bitmap.
func NewMemoryBitmap(width, height int, format PixelFormat) *MemoryBitmap {
	stride := width * format.Channels()
	size := 0
	if width > 0 && height > 0 {
		size = stride * height
	}
	return &MemoryBitmap{
		info: BitmapInfo{
			Width:  width,
			Height: height,
			Stride: stride,
			Format: format,
		},
		pix: make([]uint8, size),
	}
}

// WrapMemoryBitmap uses pix as the bitmap memory without copying it.
func WrapMemoryBitmap(info BitmapInfo, pix []uint8) *MemoryBitmap {
	return &MemoryBitmap{info: info, pix: pix}
}

func (b *MemoryBitmap) Info() (BitmapInfo, error) {
	if b.FailInfo != nil {
		return BitmapInfo{}, b.FailInfo
	}
	return b.info, nil
}

func (b *MemoryBitmap) LockPixels() ([]uint8, error) {
	b.LockCount++
	if b.FailLock != nil {
		return nil, b.FailLock
	}
	if b.locked {
		return nil, errAlreadyLocked
	}
	b.locked = true
	return b.pix, nil
}

func (b *MemoryBitmap) UnlockPixels() error {
	if !b.locked {
		return errNotLocked
	}
	b.locked = false
	b.UnlockCount++
	return nil
}

// Locked reports whether the pixels are currently locked.
func (b *MemoryBitmap) Locked() bool {
	return b.locked
}

// Pix returns the backing memory. The caller must not hold on to it while
// the bitmap is locked by a pipeline call.
func (b *MemoryBitmap) Pix() []uint8 {
	return b.pix
}

// NewBitmapFromImage converts a decoded image into a bitmap of the requested format.
// Color samples are stored in the given channel order.
func NewBitmapFromImage(img image.Image, format PixelFormat, order ChannelOrder) (*MemoryBitmap, error) {
	channels := format.Channels()
	if channels == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	src := imgToNRGBA(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	bmp := NewMemoryBitmap(w, h, format)
	ri, _, bi := order.indices()

	for y := 0; y < h; y++ {
		srow := src.Pix[y*src.Stride : y*src.Stride+w*4]
		drow := bmp.pix[y*bmp.info.Stride : y*bmp.info.Stride+w*channels]
		for x := 0; x < w; x++ {
			s := srow[x*4 : x*4+4]
			switch channels {
			case 1:
				drow[x] = luminance(s[0], s[1], s[2])
			default:
				d := drow[x*channels : x*channels+channels]
				d[ri], d[1], d[bi] = s[0], s[1], s[2]
				if channels == 4 {
					d[3] = s[3]
				}
			}
		}
	}
	return bmp, nil
}

// Image converts the bitmap content into a Go image. Single channel
// bitmaps become *image.Gray, everything else *image.NRGBA.
func (b *MemoryBitmap) Image(order ChannelOrder) image.Image {
	w, h := b.info.Width, b.info.Height
	channels := b.info.Format.Channels()
	if channels == 1 {
		dst := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], b.pix[y*b.info.Stride:])
		}
		return dst
	}

	ri, _, bi := order.indices()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srow := b.pix[y*b.info.Stride : y*b.info.Stride+w*channels]
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			s := srow[x*channels : x*channels+channels]
			dst.Pix[di+0] = s[ri]
			dst.Pix[di+1] = s[1]
			dst.Pix[di+2] = s[bi]
			dst.Pix[di+3] = 0xff
			if channels == 4 {
				dst.Pix[di+3] = s[3]
			}
			di += 4
		}
	}
	return dst
}
