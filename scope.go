package edgemap

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// PixelFormat describes the memory layout of a bitmap.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatGray8
	FormatRGB888
	FormatRGBA8888
)

// Channels returns the number of 8 bit samples per pixel, or 0 for unsupported formats.
func (f PixelFormat) Channels() int {
	switch f {
	case FormatGray8:
		return 1
	case FormatRGB888:
		return 3
	case FormatRGBA8888:
		return 4
	}
	return 0
}

func (f PixelFormat) String() string {
	switch f {
	case FormatGray8:
		return "GRAY_8"
	case FormatRGB888:
		return "RGB_888"
	case FormatRGBA8888:
		return "RGBA_8888"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// FormatFromChannels is the inverse of PixelFormat.Channels.
func FormatFromChannels(n int) PixelFormat {
	switch n {
	case 1:
		return FormatGray8
	case 3:
		return FormatRGB888
	case 4:
		return FormatRGBA8888
	}
	return FormatUnknown
}

// BitmapInfo is what a bitmap reports about itself before it gets locked.
type BitmapInfo struct {
	Width  int
	Height int
	Stride int
	Format PixelFormat
}

// Bitmap is an externally owned pixel container which has to be locked
// before its memory may be accessed.
type Bitmap interface {
	Info() (BitmapInfo, error)
	LockPixels() ([]uint8, error)
	UnlockPixels() error
}

// Scope holds the pixel lock of one Bitmap. It has to be released exactly once,
// which is what Release guarantees no matter how many times it is called.
type Scope struct {
	bitmap   Bitmap
	view     *PixelBuffer
	locked   bool
	released bool
}

// Acquire locks the bitmap and returns the scope owning the lock.
// Unsupported formats are rejected before any lock is taken.
func Acquire(ctx context.Context, bitmap Bitmap) (*Scope, error) {
	info, err := bitmap.Info()
	if err != nil {
		return nil, acquisitionErr("info", err)
	}
	channels := info.Format.Channels()
	if channels == 0 {
		return nil, validationErr("format", fmt.Errorf("%w: %s", ErrUnsupportedFormat, info.Format))
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, validationErr("format", ErrEmptyBuffer)
	}

	pix, err := bitmap.LockPixels()
	if err != nil {
		return nil, acquisitionErr("lock", err)
	}
	s := &Scope{
		bitmap: bitmap,
		locked: true,
	}

	stride := info.Stride
	if stride == 0 {
		stride = info.Width * channels
	}
	s.view = &PixelBuffer{
		Width:    info.Width,
		Height:   info.Height,
		Channels: channels,
		Stride:   stride,
		Pix:      pix,
	}
	if err := s.view.checkBounds(); err != nil {
		if uerr := s.Release(); uerr != nil {
			logger.Errorf(ctx, "unable to unlock a bitmap with a short pixel buffer: %v", uerr)
		}
		return nil, validationErr("lock", err)
	}
	logger.Tracef(ctx, "locked %s bitmap %s", info.Format, s.view)
	return s, nil
}

// View returns the borrowed pixel view. It fails once the scope is released.
func (s *Scope) View() (*PixelBuffer, error) {
	if s.released {
		return nil, ErrScopeReleased
	}
	return s.view, nil
}

// Release unlocks the bitmap. Calling it again is a no-op.
func (s *Scope) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	if s.view != nil {
		s.view.Pix = nil
	}
	if !s.locked {
		return nil
	}
	s.locked = false
	if err := s.bitmap.UnlockPixels(); err != nil {
		return acquisitionErr("unlock", err)
	}
	return nil
}

// Released reports whether Release was already called.
func (s *Scope) Released() bool {
	return s.released
}

// releaseScope is meant to be deferred right after a successful Acquire.
func releaseScope(ctx context.Context, s *Scope, name string) {
	if err := s.Release(); err != nil {
		logger.Errorf(ctx, "unable to release the %s bitmap: %v", name, err)
	}
}
