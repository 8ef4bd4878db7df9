/*
Package edgemap turns 8-bit pixel buffers into edge maps. The source is converted to grayscale,
smoothed with a 5x5 Gaussian kernel and passed through the selected edge operator (Canny, Sobel or
Laplacian). The single channel result is written back into a buffer of the destination's channel layout.

Bitmaps are borrowed through pixel locks: Process locks both bitmaps, runs the pipeline and
releases every acquired lock on all exit paths, including failures. Failures are logged through
the logger carried by the context and reported as false.

The package also provides a command line interface able to process single images, directories,
URLs and pipes. To check the supported flags type:

	$ edgemap --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"

		"github.com/esimov/edgemap"
	)

	func main() {
		in := edgemap.NewMemoryBitmap(640, 480, edgemap.FormatRGBA8888)
		out := edgemap.NewMemoryBitmap(640, 480, edgemap.FormatGray8)
		// fill in.Pix() with pixel data

		p := edgemap.NewProcessor()
		if !p.Process(context.Background(), in, out, edgemap.Sobel, 0, 0) {
			// out must not be used
		}
	}
*/
package edgemap
