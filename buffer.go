package edgemap

import (
	"fmt"
	"image"
)

// PixelBuffer is a borrowed view over pixel memory owned by somebody else.
// The view never copies and never frees Pix; it is only valid while the
// Scope it was obtained from is still held.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int
	// Stride is the distance in bytes between two vertically adjacent pixels.
	Stride int
	Pix    []uint8
}

// NewPixelBuffer wraps pix as a tightly packed buffer when stride is zero.
func NewPixelBuffer(width, height, channels, stride int, pix []uint8) (*PixelBuffer, error) {
	if stride == 0 {
		stride = width * channels
	}
	b := &PixelBuffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   stride,
		Pix:      pix,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Empty reports whether the buffer has no pixels to process.
func (b *PixelBuffer) Empty() bool {
	return b == nil || b.Width <= 0 || b.Height <= 0
}

// Validate checks the geometry against the supported layouts and the size of the backing memory.
func (b *PixelBuffer) Validate() error {
	if b.Empty() {
		return ErrEmptyBuffer
	}
	if !supportedChannels(b.Channels) {
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, b.Channels)
	}
	return b.checkBounds()
}

func (b *PixelBuffer) checkBounds() error {
	rowLen := b.Width * b.Channels
	if b.Stride < rowLen {
		return fmt.Errorf("%w: stride %d < row length %d", ErrBufferTooSmall, b.Stride, rowLen)
	}
	if need := (b.Height-1)*b.Stride + rowLen; len(b.Pix) < need {
		return fmt.Errorf("%w: have %d bytes, need %d", ErrBufferTooSmall, len(b.Pix), need)
	}
	return nil
}

// Bounds returns the rectangle covered by the buffer.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Row returns the pixels of row y without the stride padding.
func (b *PixelBuffer) Row(y int) []uint8 {
	off := y * b.Stride
	return b.Pix[off : off+b.Width*b.Channels]
}

// Gray exposes a single channel buffer as an *image.Gray sharing the same memory.
func (b *PixelBuffer) Gray() (*image.Gray, error) {
	if b.Channels != 1 {
		return nil, fmt.Errorf("%w: expected 1 channel, got %d", ErrUnsupportedChannels, b.Channels)
	}
	return &image.Gray{
		Pix:    b.Pix[:(b.Height-1)*b.Stride+b.Width],
		Stride: b.Stride,
		Rect:   b.Bounds(),
	}, nil
}

func (b *PixelBuffer) String() string {
	return fmt.Sprintf("%dx%dx%d(stride:%d)", b.Width, b.Height, b.Channels, b.Stride)
}

func supportedChannels(n int) bool {
	switch n {
	case 1, 3, 4:
		return true
	}
	return false
}
