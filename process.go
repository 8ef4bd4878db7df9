package edgemap

import (
	"context"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// ProcessImage decodes the image read from r, runs the edge detection pipeline
// over it and encodes the edge map into w.
// We are using the io package, since we can provide different input and output types,
// as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) ProcessImage(ctx context.Context, r io.Reader, w io.Writer) error {
	img, err := decodeImg(r)
	if err != nil {
		return err
	}

	if p.MaxSize > 0 {
		b := img.Bounds()
		if b.Dx() > p.MaxSize || b.Dy() > p.MaxSize {
			img = imaging.Fit(img, p.MaxSize, p.MaxSize, imaging.Lanczos)
			logger.Debugf(ctx, "downscaled the source image from %v to %v", b.Size(), img.Bounds().Size())
		}
	}

	in, err := NewBitmapFromImage(img, FormatRGBA8888, p.ChannelOrder)
	if err != nil {
		return err
	}
	info, _ := in.Info()

	if p.EnhanceContrast {
		enhanced := NewMemoryBitmap(info.Width, info.Height, FormatRGBA8888)
		if err := p.RunEnhance(ctx, in, enhanced); err != nil {
			return fmt.Errorf("unable to enhance the source image: %w", err)
		}
		in = enhanced
	}

	channels := p.OutputChannels
	if channels == 0 {
		channels = 4
	}
	format := FormatFromChannels(channels)
	if format == FormatUnknown {
		return validationErr("output", fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels))
	}
	out := NewMemoryBitmap(info.Width, info.Height, format)

	if err := p.Run(ctx, in, out, p.Algorithm, p.ThresholdLow, p.ThresholdHigh); err != nil {
		return err
	}

	quality := p.Quality
	if quality <= 0 {
		quality = 100
	}
	return encodeImg(w, out.Image(p.ChannelOrder), quality)
}
