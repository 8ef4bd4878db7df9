//go:build !with_cv
// +build !with_cv

package edgemap

// DefaultEngine returns the engine used when a Processor has none configured.
func DefaultEngine() Engine {
	return NativeEngine{}
}
