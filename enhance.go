package edgemap

import (
	"context"
	"fmt"
	"image"

	"github.com/facebookincubator/go-belt/tool/logger"
)

// Enhance increases the local contrast of in and writes the result into out.
// The lightness is equalized in the L*a*b* space and the result is fully opaque.
// Both bitmaps have to be color bitmaps of the same size. Like Process,
// both pixel locks are released on every path and failures are reported as false.
func (p *Processor) Enhance(ctx context.Context, in, out Bitmap) bool {
	if err := p.RunEnhance(ctx, in, out); err != nil {
		logger.Errorf(ctx, "contrast enhancement failed: %v", err)
		return false
	}
	return true
}

// RunEnhance is Enhance returning the failure reason instead of a boolean.
func (p *Processor) RunEnhance(ctx context.Context, in, out Bitmap) (_err error) {
	if err := preflight(in, "input"); err != nil {
		return err
	}
	if err := preflight(out, "output"); err != nil {
		return err
	}

	inScope, err := Acquire(ctx, in)
	if err != nil {
		return fmt.Errorf("unable to acquire the input bitmap: %w", err)
	}
	defer releaseScope(ctx, inScope, "input")

	outScope, err := Acquire(ctx, out)
	if err != nil {
		return fmt.Errorf("unable to acquire the output bitmap: %w", err)
	}
	defer releaseScope(ctx, outScope, "output")

	inView, err := inScope.View()
	if err != nil {
		return processingErr("input view", err)
	}
	outView, err := outScope.View()
	if err != nil {
		return processingErr("output view", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_err = processingErr("enhance", fmt.Errorf("recovered from panic: %v", r))
		}
	}()
	return p.enhance(inView, outView)
}

// enhance equalizes the lightness of in through the engine and writes the
// opaque result into out.
func (p *Processor) enhance(in, out *PixelBuffer) error {
	if in.Width != out.Width || in.Height != out.Height {
		return validationErr("dimensions", fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, in, out))
	}
	for _, b := range []*PixelBuffer{in, out} {
		if b.Channels != 3 && b.Channels != 4 {
			return validationErr("enhance", fmt.Errorf("%w: color buffer expected, got %d channels", ErrUnsupportedChannels, b.Channels))
		}
	}

	ri, gi, bi := p.ChannelOrder.indices()
	src := image.NewRGBA(in.Bounds())
	for y := 0; y < in.Height; y++ {
		row := in.Row(y)
		for x := 0; x < in.Width; x++ {
			px := row[x*in.Channels:]
			d := src.Pix[y*src.Stride+x*4:]
			d[0], d[1], d[2], d[3] = px[ri], px[gi], px[bi], 0xff
		}
	}

	engine := p.engine()
	dst, err := engine.Contrast(src)
	if err != nil {
		return processingErr("contrast", fmt.Errorf("%s: %w", engine, err))
	}
	if dst.Bounds().Size() != src.Bounds().Size() {
		return processingErr("contrast", fmt.Errorf("%s returned a %v frame for a %v input", engine, dst.Bounds().Size(), src.Bounds().Size()))
	}

	for y := 0; y < out.Height; y++ {
		row := out.Row(y)
		for x := 0; x < out.Width; x++ {
			s := dst.Pix[y*dst.Stride+x*4:]
			px := row[x*out.Channels:]
			px[ri], px[gi], px[bi] = s[0], s[1], s[2]
			if out.Channels == 4 {
				px[3] = 0xff
			}
		}
	}
	return nil
}
