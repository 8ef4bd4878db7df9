package edgemap

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrayscale_ChannelOrder(t *testing.T) {
	// a single pure red pixel in RGB order is a pure blue one in BGR order
	view, err := NewPixelBuffer(1, 1, 3, 0, []uint8{255, 0, 0})
	require.NoError(t, err)

	rgb, err := ToGrayscale(view, OrderRGB)
	require.NoError(t, err)
	assert.Equal(t, uint8(76), rgb.Pix[0])

	bgr, err := ToGrayscale(view, OrderBGR)
	require.NoError(t, err)
	assert.Equal(t, uint8(29), bgr.Pix[0])
}

func TestGrayscale_MatchesLuminanceWeights(t *testing.T) {
	testCases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{177, 177, 177, 177},
		{0, 255, 0, 150},
		{0, 0, 255, 29},
	}
	for _, tc := range testCases {
		view, err := NewPixelBuffer(1, 1, 4, 0, []uint8{tc.r, tc.g, tc.b, 0})
		require.NoError(t, err)
		gray, err := ToGrayscale(view, OrderRGB)
		require.NoError(t, err)
		assert.Equal(t, tc.want, gray.Pix[0], "rgb(%d, %d, %d)", tc.r, tc.g, tc.b)
	}
}

func TestGrayscale_SingleChannelRoundTrip(t *testing.T) {
	const w, h, stride = 7, 5, 9

	pix := make([]uint8, stride*h)
	for i := range pix {
		pix[i] = uint8(i * 13)
	}
	orig := append([]uint8(nil), pix...)

	view, err := NewPixelBuffer(w, h, 1, stride, pix)
	require.NoError(t, err)
	gray, err := ToGrayscale(view, OrderRGB)
	require.NoError(t, err)

	out := make([]uint8, stride*h)
	copy(out, pix)
	dst, err := NewPixelBuffer(w, h, 1, stride, out)
	require.NoError(t, err)
	require.NoError(t, FromGrayscale(gray, dst))
	assert.Equal(t, orig, out)
}

func TestGrayscale_FromGrayscaleReplicates(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 10})
	gray.SetGray(1, 0, color.Gray{Y: 200})

	rgb, err := NewPixelBuffer(2, 1, 3, 0, make([]uint8, 6))
	require.NoError(t, err)
	require.NoError(t, FromGrayscale(gray, rgb))
	assert.Equal(t, []uint8{10, 10, 10, 200, 200, 200}, rgb.Pix)

	rgba, err := NewPixelBuffer(2, 1, 4, 0, make([]uint8, 8))
	require.NoError(t, err)
	require.NoError(t, FromGrayscale(gray, rgba))
	assert.Equal(t, []uint8{10, 10, 10, 255, 200, 200, 200, 255}, rgba.Pix)

	small, err := NewPixelBuffer(1, 1, 4, 0, make([]uint8, 4))
	require.NoError(t, err)
	assert.ErrorIs(t, FromGrayscale(gray, small), ErrDimensionMismatch)
}

func TestGrayscale_RejectsUnsupportedChannels(t *testing.T) {
	view := &PixelBuffer{Width: 2, Height: 2, Channels: 2, Stride: 4, Pix: make([]uint8, 8)}
	_, err := ToGrayscale(view, OrderRGB)
	assert.ErrorIs(t, err, ErrUnsupportedChannels)
}

func TestParseChannelOrder(t *testing.T) {
	for in, want := range map[string]ChannelOrder{"rgb": OrderRGB, "RGBA": OrderRGB, "bgr": OrderBGR, " bgra ": OrderBGR} {
		got, err := ParseChannelOrder(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseChannelOrder("grb")
	assert.Error(t, err)

	var o ChannelOrder
	require.NoError(t, o.Set("bgr"))
	assert.Equal(t, "bgr", o.String())
}
