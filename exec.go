package edgemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/esimov/edgemap/utils"
	"github.com/facebookincubator/go-belt/tool/logger"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// outputExtensions lists the formats the edge map can be encoded into.
var outputExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// Ops describes where the images are read from and written to.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
}

// result holds the relevant information about the processing of one image.
type result struct {
	path string
	err  error
}

// Execute runs the edge detection over a single image, a pipe, an URL or
// every image of a directory. Directories are processed concurrently: every
// worker owns its own pair of bitmaps, the Processor itself is only read.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	var (
		fs  os.FileInfo
		err error
	)
	src := op.Src

	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		tmp, err := utils.DownloadImage(src)
		if tmp != nil {
			defer os.Remove(tmp.Name())
			defer tmp.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		src = tmp.Name()
	}

	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if _, err := os.Stat(op.Dst); err != nil {
			if err := os.MkdirAll(op.Dst, 0755); err != nil {
				return fmt.Errorf("unable to create the destination directory: %w", err)
			}
		}

		// Limit the concurrently running workers to maxWorkers.
		workers := op.Workers
		if workers <= 0 || workers > maxWorkers {
			workers = runtime.NumCPU()
		}
		logger.Debugf(ctx, "processing the directory %s with %d workers", src, workers)

		// The progress indicator is not shared between the workers.
		proc := *p
		proc.Spinner = nil

		// Process recursively the image files from the specified directory concurrently.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, src, ValidExtensions)

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(ctx, &proc, op.Dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var failed int
		for res := range ch {
			if res.err != nil {
				failed++
			}
			op.printOpStatus(res.path, res.err)
		}
		if err := <-errc; err != nil {
			return fmt.Errorf("unable to walk the source directory: %w", err)
		}
		if failed > 0 {
			return fmt.Errorf("%d image(s) could not be processed", failed)
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if op.Dst != op.PipeName && !isValidExtension(ext, outputExtensions) {
			return fmt.Errorf("%v file type not supported", ext)
		}

		err = op.process(ctx, p, src, op.Dst)
		op.printOpStatus(op.Dst, err)
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("%s is neither a file nor a directory", src)
	}

	fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// consumer reads the path names from the paths channel and runs the pipeline against the source image.
func (op *Ops) consumer(
	ctx context.Context,
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		dst := filepath.Join(dest, filepath.Base(src))
		if !isValidExtension(strings.ToLower(filepath.Ext(dst)), outputExtensions) {
			dst = strings.TrimSuffix(dst, filepath.Ext(dst)) + ".png"
		}
		err := op.process(ctx, p, src, dst)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// process runs the pipeline over the source image and returns the error in case exists.
func (op *Ops) process(ctx context.Context, p *Processor, in, out string) error {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				logger.Errorf(ctx, "could not close the opened file: %v", err)
			}
		}
	}()

	defer func() {
		if f, ok := dst.(*os.File); ok && f != os.Stdout {
			if err := f.Close(); err != nil {
				logger.Errorf(ctx, "could not close the opened file: %v", err)
			}
		}
	}()

	if p.Spinner != nil {
		// Capture CTRL-C signal and restore back the cursor visibility.
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
		stop := make(chan struct{})
		defer func() {
			signal.Stop(signalChan)
			close(stop)
		}()
		go func() {
			select {
			case <-signalChan:
				p.Spinner.RestoreCursor()
				os.Exit(1)
			case <-stop:
			}
		}()

		p.Spinner.Start()
		defer p.Spinner.Stop()
	}

	err = p.ProcessImage(ctx, src, dst)
	if err != nil {
		// remove the generated image file in case of an error
		if f, ok := dst.(*os.File); ok && f != os.Stdout {
			os.Remove(f.Name())
		}
		if p.Spinner != nil {
			p.Spinner.StopMsg = utils.DecorateText("edge detection failed ✘\n", utils.ErrorMessage)
		}
		return err
	}
	if p.Spinner != nil {
		p.Spinner.StopMsg = utils.DecorateText("edge detection finished ✔\n", utils.SuccessMessage)
	}
	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)

	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the processed image.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n",
			utils.DecorateText(fmt.Sprintf("\nError processing %s:", filepath.Base(fname)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v", err), utils.DefaultMessage),
		)
		return
	}
	if fname == op.PipeName {
		return
	}
	size := ""
	if fi, err := os.Stat(fname); err == nil {
		size = " (" + humanize.Bytes(uint64(fi.Size())) + ")"
	}
	fmt.Fprintf(os.Stderr, "\nThe edge map has been saved as: %s%s %s\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		size,
		utils.DefaultColor,
	)
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}

			if isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
