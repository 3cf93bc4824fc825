package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rect-segmenter/internal/codec"
	"rect-segmenter/internal/config"
	"rect-segmenter/internal/logger"
	"rect-segmenter/internal/memory"
	"rect-segmenter/internal/opencv"
	"rect-segmenter/internal/parallel"
	"rect-segmenter/internal/pipeline"
	"rect-segmenter/internal/segment"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"
)

const (
	AppName    = "rect-segmenter"
	AppVersion = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	workers     int
	codec       string
	logLevel    string
	memoryLimit int64
	report      bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   AppName + " <input-path> <output-path>",
		Short: "Approximate an image by one flat rectangle on a flat background",
		Long: "Finds the axis-aligned rectangle that, filled with its mean color on a\n" +
			"background of the remaining mean color, minimizes the squared error\n" +
			"against the input, and writes that two-color rendering to output-path.",
		Version: AppVersion,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, opts, args[0], args[1])
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.IntVarP(&opts.workers, "workers", "j", 0, "search goroutines (0 = GOMAXPROCS)")
	flags.StringVar(&opts.codec, "codec", config.CodecOpenCV, "image codec: opencv or native")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.Int64Var(&opts.memoryLimit, "memory-limit", 0, "byte limit for transient buffers (0 = default)")
	flags.BoolVar(&opts.report, "report", false, "print the rectangle and both colors")

	return cmd
}

// loadConfig reads the environment and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("codec") {
		cfg.Codec = opts.codec
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("memory-limit") {
		cfg.MemoryLimit = opts.memoryLimit
	}

	return cfg, cfg.Validate()
}

func run(cmd *cobra.Command, opts options, input, output string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	level, _ := cfg.ZerologLevel()
	log := logger.NewConsoleLogger(level)

	log.Debug("Application", "starting", map[string]interface{}{
		"version": AppVersion,
		"codec":   cfg.Codec,
		"workers": parallel.Workers(cfg.Workers),
		"avx2":    cpu.X86.HasAVX2,
		"fma":     cpu.X86.HasFMA,
		"asimd":   cpu.ARM64.HasASIMD,
	})

	mem := memory.NewManager(log, cfg.MemoryLimit)
	seg := segment.New(
		segment.WithWorkers(cfg.Workers),
		segment.WithAllocator(mem),
		segment.WithLogger(log),
	)

	coord := pipeline.NewCoordinator(newCodec(cfg.Codec, log), seg, log)
	coord.SetStatsLogger(mem)

	stdout := cmd.OutOrStdout()
	coord.SetHooks(pipeline.Hooks{
		BeforeSegment: func(*segment.RasterImage) {
			fmt.Fprintln(stdout, "Segmenting...")
		},
		AfterSegment: func(elapsed time.Duration) {
			fmt.Fprintf(stdout, "Took %.2g seconds, writing results...\n", elapsed.Seconds())
		},
	})

	report, err := coord.Run(cmd.Context(), input, output)
	if err != nil {
		return err
	}

	if opts.report {
		printReport(stdout, report)
	}
	fmt.Fprintln(stdout, "Done.")
	return nil
}

func newCodec(name string, log logger.Logger) codec.Codec {
	if name == config.CodecNative {
		return codec.NewNative(log)
	}
	return opencv.NewCodec(log)
}

func printReport(w io.Writer, r *pipeline.Report) {
	res := r.Result
	outer := codec.RGBA(r.Order, res.Outer)
	inner := codec.RGBA(r.Order, res.Inner)

	fmt.Fprintf(w, "Image:     %dx%d\n", r.Width, r.Height)
	fmt.Fprintf(w, "Rectangle: y0=%d x0=%d y1=%d x1=%d\n", res.Y0, res.X0, res.Y1, res.X1)
	fmt.Fprintf(w, "Outer:     #%02x%02x%02x\n", outer.R, outer.G, outer.B)
	fmt.Fprintf(w, "Inner:     #%02x%02x%02x\n", inner.R, inner.G, inner.B)
}
