package edgemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithm_FromCode(t *testing.T) {
	assert.Equal(t, Canny, AlgorithmFromCode(0))
	assert.Equal(t, Sobel, AlgorithmFromCode(1))
	assert.Equal(t, Laplacian, AlgorithmFromCode(2))
	for _, code := range []int{-1, 3, 99} {
		assert.Equal(t, Canny, AlgorithmFromCode(code), "code %d", code)
	}
}

func TestAlgorithm_Parse(t *testing.T) {
	testCases := []struct {
		in   string
		want Algorithm
	}{
		{"canny", Canny},
		{"Sobel", Sobel},
		{" laplacian ", Laplacian},
		{"1", Sobel},
		{"2", Laplacian},
		{"99", Canny},
	}
	for _, tc := range testCases {
		got, err := ParseAlgorithm(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseAlgorithm("prewitt")
	assert.Error(t, err)
}

func TestAlgorithm_FlagValue(t *testing.T) {
	var a Algorithm
	require.NoError(t, a.Set("laplacian"))
	assert.Equal(t, Laplacian, a)
	assert.Equal(t, "laplacian", a.String())
	assert.Equal(t, "algorithm", a.Type())
	assert.Error(t, a.Set("nope"))
	assert.Equal(t, Laplacian, a)

	assert.False(t, Algorithm(7).Valid())
	assert.Equal(t, "Algorithm(7)", Algorithm(7).String())
}
