//go:build with_cv
// +build with_cv

package edgemap

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CVEngine runs the pipeline through OpenCV. Canny shares the suppression
// and hysteresis stage with NativeEngine, so both produce the same edges.
type CVEngine struct{}

var _ Engine = CVEngine{}

// DefaultEngine returns the engine used when a Processor has none configured.
func DefaultEngine() Engine {
	return CVEngine{}
}

func (CVEngine) String() string {
	return "opencv"
}

func (CVEngine) Smooth(src *image.Gray) (*image.Gray, error) {
	m, err := grayToMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(m, &dst, image.Pt(blurKernelSize, blurKernelSize), blurSigma, blurSigma, gocv.BorderDefault)
	return matToGray(dst)
}

func (CVEngine) Detect(src *image.Gray, alg Algorithm, params Params) (*image.Gray, error) {
	m, err := grayToMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	switch alg.normalize() {
	case Sobel:
		gx, gy := gocv.NewMat(), gocv.NewMat()
		defer gx.Close()
		defer gy.Close()
		gocv.Sobel(m, &gx, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
		gocv.Sobel(m, &gy, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)

		ax, ay := gocv.NewMat(), gocv.NewMat()
		defer ax.Close()
		defer ay.Close()
		gocv.ConvertScaleAbs(gx, &ax, 1, 0)
		gocv.ConvertScaleAbs(gy, &ay, 1, 0)

		edges := gocv.NewMat()
		defer edges.Close()
		gocv.AddWeighted(ax, 0.5, ay, 0.5, 0, &edges)
		return matToGray(edges)

	case Laplacian:
		lap := gocv.NewMat()
		defer lap.Close()
		gocv.Laplacian(m, &lap, gocv.MatTypeCV16S, 3, 1, 0, gocv.BorderDefault)

		edges := gocv.NewMat()
		defer edges.Close()
		gocv.ConvertScaleAbs(lap, &edges, 1, 0)
		return matToGray(edges)

	default:
		gx, gy := gocv.NewMat(), gocv.NewMat()
		defer gx.Close()
		defer gy.Close()
		gocv.Sobel(m, &gx, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderReplicate)
		gocv.Sobel(m, &gy, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderReplicate)

		px, err := matToPlane16(gx)
		if err != nil {
			return nil, err
		}
		py, err := matToPlane16(gy)
		if err != nil {
			return nil, err
		}
		return cannyFromGradients(px, py, params.ThresholdLow, params.ThresholdHigh, !params.L1Gradient), nil
	}
}

func (CVEngine) Contrast(src *image.RGBA) (*image.RGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyBuffer
	}
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return nil, fmt.Errorf("unable to wrap the frame into a Mat: %w", err)
	}
	defer m.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(m, &rgb, gocv.ColorRGBAToRGB)

	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(rgb, &lab, gocv.ColorRGBToLab)

	planes := gocv.Split(lab)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()
	if len(planes) != 3 {
		return nil, fmt.Errorf("opencv split the Lab frame into %d planes", len(planes))
	}

	clahe := gocv.NewCLAHEWithParams(claheClipLimit, image.Pt(claheGridSize, claheGridSize))
	defer clahe.Close()
	light := gocv.NewMat()
	defer light.Close()
	clahe.Apply(planes[0], &light)
	light.CopyTo(&planes[0])
	gocv.Merge(planes, &lab)

	gocv.CvtColor(lab, &rgb, gocv.ColorLabToRGB)
	out := gocv.NewMat()
	defer out.Close()
	gocv.CvtColor(rgb, &out, gocv.ColorRGBToRGBA)
	if out.Empty() {
		return nil, fmt.Errorf("opencv returned an empty Mat")
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(dst.Pix, out.ToBytes())
	return dst, nil
}

func grayToMat(src *image.Gray) (gocv.Mat, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, ErrEmptyBuffer
	}
	pix := src.Pix
	if src.Stride != w {
		pix = make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], src.Pix[y*src.Stride:])
		}
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, pix[:w*h])
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("unable to wrap the frame into a Mat: %w", err)
	}
	return m, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() {
		return nil, fmt.Errorf("opencv returned an empty Mat")
	}
	dst := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(dst.Pix, m.ToBytes())
	return dst, nil
}

func matToPlane16(m gocv.Mat) (*plane16, error) {
	if m.Empty() {
		return nil, fmt.Errorf("opencv returned an empty gradient Mat")
	}
	data, err := m.DataPtrInt16()
	if err != nil {
		return nil, fmt.Errorf("unable to access the gradient samples: %w", err)
	}
	p := newPlane16(m.Cols(), m.Rows())
	copy(p.pix, data)
	return p, nil
}
