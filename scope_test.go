package edgemap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_AcquireAndRelease(t *testing.T) {
	bmp := NewMemoryBitmap(4, 3, FormatRGB888)

	s, err := Acquire(context.Background(), bmp)
	require.NoError(t, err)
	assert.True(t, bmp.Locked())

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, 4, view.Width)
	assert.Equal(t, 3, view.Height)
	assert.Equal(t, 3, view.Channels)
	assert.Equal(t, 12, view.Stride)

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
	assert.True(t, s.Released())
	assert.False(t, bmp.Locked())
	assert.Equal(t, 1, bmp.UnlockCount)

	_, err = s.View()
	assert.ErrorIs(t, err, ErrScopeReleased)
	assert.Nil(t, view.Pix)
}

func TestScope_RejectsUnsupportedFormatBeforeLocking(t *testing.T) {
	bmp := WrapMemoryBitmap(BitmapInfo{Width: 2, Height: 2, Format: FormatUnknown}, make([]uint8, 16))

	_, err := Acquire(context.Background(), bmp)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Zero(t, bmp.LockCount)
}

func TestScope_InfoFailure(t *testing.T) {
	bmp := NewMemoryBitmap(2, 2, FormatGray8)
	bmp.FailInfo = errors.New("no info")

	_, err := Acquire(context.Background(), bmp)
	assert.ErrorIs(t, err, ErrResourceAcquisition)
	assert.Zero(t, bmp.LockCount)
}

func TestScope_ShortPixelMemoryIsUnlocked(t *testing.T) {
	bmp := WrapMemoryBitmap(BitmapInfo{Width: 4, Height: 4, Stride: 16, Format: FormatRGBA8888}, make([]uint8, 10))

	_, err := Acquire(context.Background(), bmp)
	assert.ErrorIs(t, err, ErrBufferTooSmall)
	assert.Equal(t, 1, bmp.LockCount)
	assert.Equal(t, 1, bmp.UnlockCount)
	assert.False(t, bmp.Locked())
}

func TestScope_ZeroStrideMeansTightlyPacked(t *testing.T) {
	bmp := WrapMemoryBitmap(BitmapInfo{Width: 5, Height: 2, Format: FormatRGBA8888}, make([]uint8, 40))

	s, err := Acquire(context.Background(), bmp)
	require.NoError(t, err)
	defer releaseScope(context.Background(), s, "test")

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, 20, view.Stride)
}

func TestPipelineError_Matching(t *testing.T) {
	err := validationErr("input", ErrEmptyBuffer)

	var perr *PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "input", perr.Op)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrEmptyBuffer)
	assert.NotErrorIs(t, err, ErrProcessing)
	assert.Equal(t, "validation failure: input: empty buffer", err.Error())
}

func TestPixelFormat_Channels(t *testing.T) {
	for _, f := range formats {
		assert.Equal(t, f, FormatFromChannels(f.Channels()))
	}
	assert.Zero(t, FormatUnknown.Channels())
	assert.Equal(t, FormatUnknown, FormatFromChannels(2))
	assert.Equal(t, "RGBA_8888", FormatRGBA8888.String())
}
