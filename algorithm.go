package edgemap

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm selects the edge operator applied after smoothing.
type Algorithm int

const (
	Canny Algorithm = iota
	Sobel
	Laplacian
)

// Default thresholds used when none are configured.
const (
	DefaultThresholdLow  = 50.0
	DefaultThresholdHigh = 150.0
)

// AlgorithmFromCode maps the numeric selector of the external interface
// (0 = Canny, 1 = Sobel, 2 = Laplacian) to an Algorithm.
// Any other code falls back to Canny.
func AlgorithmFromCode(code int) Algorithm {
	switch a := Algorithm(code); a {
	case Canny, Sobel, Laplacian:
		return a
	}
	return Canny
}

// Valid reports whether a is one of the known algorithms.
func (a Algorithm) Valid() bool {
	return a >= Canny && a <= Laplacian
}

// normalize applies the Canny fallback to unknown values.
func (a Algorithm) normalize() Algorithm {
	if !a.Valid() {
		return Canny
	}
	return a
}

func (a Algorithm) String() string {
	switch a {
	case Canny:
		return "canny"
	case Sobel:
		return "sobel"
	case Laplacian:
		return "laplacian"
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm accepts either the algorithm name or its numeric code.
// Unknown numeric codes follow the Canny fallback, unknown names are an error.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "canny", "":
		return Canny, nil
	case "sobel":
		return Sobel, nil
	case "laplacian", "laplace":
		return Laplacian, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return Canny, fmt.Errorf("unknown algorithm %q", s)
	}
	return AlgorithmFromCode(code), nil
}

// Set implements pflag.Value.
func (a *Algorithm) Set(s string) error {
	v, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Type implements pflag.Value.
func (a *Algorithm) Type() string {
	return "algorithm"
}

// Params holds the numeric parameters of the edge operators.
// Only Canny uses the thresholds; they are passed through unvalidated.
type Params struct {
	ThresholdLow  float64
	ThresholdHigh float64
	// L1Gradient makes Canny rate gradients by |dx|+|dy| instead of the L2 norm.
	L1Gradient bool
	// SkipSmooth runs the edge operator on the unsmoothed grayscale frame.
	SkipSmooth bool
}
