package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/esimov/edgemap"
	"github.com/esimov/edgemap/utils"
	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
)

const HelpBanner = `
┌─┐┌┬┐┌─┐┌─┐┌┬┐┌─┐┌─┐
├┤  ││├┬┐├┤ │││├─┤├─┘
└─┘─┴┘└─┘└─┘┴ ┴┴ ┴┴

Edge map generator (Canny, Sobel, Laplacian).
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = pflag.StringP("in", "i", pipeName, "Source image, directory or URL")
	destination = pflag.StringP("out", "o", pipeName, "Destination image or directory")
	thresholdLo = pflag.Float64("low", edgemap.DefaultThresholdLow, "Canny lower hysteresis threshold")
	thresholdHi = pflag.Float64("high", edgemap.DefaultThresholdHigh, "Canny upper hysteresis threshold")
	channels    = pflag.Int("channels", 4, "Channel count of the generated edge map (1, 3 or 4)")
	enhance     = pflag.Bool("enhance", false, "Enhance the local contrast before the edge detection")
	maxSize     = pflag.Int("max-size", 0, "Downscale images larger than this size (0 keeps the original size)")
	quality     = pflag.Int("quality", 100, "JPEG output quality")
	workers     = pflag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	envFile     = pflag.String("env-file", "", "File to load the EDGEMAP_* environment variables from (default .env)")
)

func main() {
	algorithm := edgemap.Canny
	pflag.VarP(&algorithm, "algorithm", "a", "Edge operator: canny, sobel, laplacian or 0, 1, 2")
	order := edgemap.OrderRGB
	pflag.Var(&order, "order", "Channel order of the color samples: rgb or bgr")
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg, err := edgemap.LoadConfig(*envFile)

	// The environment only provides the values which were not set explicitly.
	if cfg.LogLevel != logger.LevelUndefined && !pflag.CommandLine.Changed("log-level") {
		loggerLevel = cfg.LogLevel
	}
	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if err != nil {
		l.Fatal(err)
	}

	proc := cfg.Processor()
	if pflag.CommandLine.Changed("algorithm") {
		proc.Algorithm = algorithm
	}
	if pflag.CommandLine.Changed("low") {
		proc.ThresholdLow = *thresholdLo
	}
	if pflag.CommandLine.Changed("high") {
		proc.ThresholdHigh = *thresholdHi
	}
	if pflag.CommandLine.Changed("order") {
		proc.ChannelOrder = order
	}
	if pflag.CommandLine.Changed("channels") {
		proc.OutputChannels = *channels
	}
	conc := *workers
	if !pflag.CommandLine.Changed("conc") && cfg.Workers > 0 {
		conc = cfg.Workers
	}
	proc.EnhanceContrast = *enhance
	proc.MaxSize = *maxSize
	proc.Quality = *quality

	if edgemap.FormatFromChannels(proc.OutputChannels) == edgemap.FormatUnknown {
		pflag.Usage()
		l.Fatalf("unsupported output channel count: %d", proc.OutputChannels)
	}
	l.Debugf("running %s with thresholds %v/%v", proc.Algorithm, proc.ThresholdLow, proc.ThresholdHigh)

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ EDGEMAP", utils.StatusMessage),
		utils.DecorateText("is detecting the edges...", utils.DefaultMessage))
	proc.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*200, true)

	op := &edgemap.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  conc,
	}
	if err := proc.Execute(ctx, op); err != nil {
		belt.Flush(ctx)
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}
}
