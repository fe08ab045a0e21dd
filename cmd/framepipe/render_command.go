package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/framepipe/pkg/artifact/blobstore"
	gfcontext "github.com/vnykmshr/framepipe/pkg/common/context"
	gferrors "github.com/vnykmshr/framepipe/pkg/common/errors"
	"github.com/vnykmshr/framepipe/pkg/encoding/encoder"
	"github.com/vnykmshr/framepipe/pkg/metrics"
)

const storeStopTimeout = 2 * time.Second

type renderOptions struct {
	frames int
	width  int
	height int
	rate   float64
	output string
}

type renderResult struct {
	frames  int
	retries int
	bytes   int
	locator string
	output  string
	elapsed time.Duration
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a generated test animation to a GIF file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("frames") {
				opts.frames = cfg.Render.Frames
			}
			if !cmd.Flags().Changed("width") {
				opts.width = cfg.Render.Width
			}
			if !cmd.Flags().Changed("height") {
				opts.height = cfg.Render.Height
			}
			if !cmd.Flags().Changed("rate") {
				opts.rate = cfg.Encoder.Rate
			}
			if !cmd.Flags().Changed("output") {
				opts.output = cfg.Render.Output
			}

			result, err := runRender(cmd, ctx, opts)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Frames", strconv.Itoa(result.frames)},
					{"Retries", strconv.Itoa(result.retries)},
					{"Size", humanize.Bytes(uint64(result.bytes))},
					{"Elapsed", result.elapsed.Round(time.Millisecond).String()},
					{"Locator", result.locator},
					{"Output", result.output},
				},
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "Number of frames to render")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Frame width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "Frame height in pixels")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "Frames per second")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Destination GIF file")
	return cmd
}

func runRender(cmd *cobra.Command, cc *commandContext, opts renderOptions) (renderResult, error) {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return renderResult{}, err
	}
	logger, err := cc.logger(cmd.ErrOrStderr())
	if err != nil {
		return renderResult{}, err
	}
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		promReg := prometheus.NewRegistry()
		reg = metrics.NewRegistry(promReg)
		stop, err := startMetricsServer(cfg.Metrics.Listen, promReg, logger)
		if err != nil {
			return renderResult{}, fmt.Errorf("start metrics server: %w", err)
		}
		defer stop()
	}

	storeOpts := []blobstore.Option{blobstore.WithLogger(logger)}
	if reg != nil {
		storeOpts = append(storeOpts, blobstore.WithMetrics(reg))
	}
	store, err := blobstore.New(cfg.StoreConfig(), storeOpts...)
	if err != nil {
		return renderResult{}, err
	}
	if err := store.Start(); err != nil {
		return renderResult{}, err
	}
	defer stopStore(store, logger)

	reporter, finish := newProgressReporter(cmd.ErrOrStderr(), opts.frames)
	defer finish()

	encOpts := []encoder.Option{
		encoder.WithLogger(logger),
		encoder.WithPublisher(store),
		encoder.WithProgress(reporter),
	}
	if reg != nil {
		encOpts = append(encOpts, encoder.WithMetrics(reg, "render"))
	}

	encCfg := cfg.EncoderConfig()
	if opts.rate > 0 {
		encCfg.Rate = opts.rate
	}
	enc, err := encoder.NewWithConfig(encCfg, encOpts...)
	if err != nil {
		return renderResult{}, err
	}

	start := time.Now()
	result := renderResult{output: opts.output}

	var submitErr error
	for i := 0; i < opts.frames; i++ {
		retries, err := submitWithRetry(runCtx, enc, demoFrame(i, opts.frames, opts.width, opts.height),
			opts.width, opts.height, cfg.Render.MaxRetries, cfg.RetryDelay())
		result.retries += retries
		if err != nil {
			submitErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
	}

	// Close even after a failed submission so the worker finishes.
	completion, err := enc.Close()
	if err != nil {
		return renderResult{}, err
	}
	defer func() { <-enc.Done() }()
	if submitErr != nil {
		return renderResult{}, submitErr
	}

	locator, err := completion.Wait(runCtx)
	if err != nil {
		return renderResult{}, err
	}
	blob, err := store.Get(locator)
	if err != nil {
		return renderResult{}, err
	}
	if err := os.WriteFile(opts.output, blob.Data, 0o644); err != nil {
		return renderResult{}, fmt.Errorf("write output: %w", err)
	}
	releaseArtifact(store, locator, logger)

	result.frames = enc.FrameIndex()
	result.bytes = len(blob.Data)
	result.locator = locator
	result.elapsed = time.Since(start)
	return result, nil
}

// submitWithRetry offers one frame, backing off while the encoder's queue is
// full. It returns how many times the frame was refused.
func submitWithRetry(ctx context.Context, enc *encoder.Encoder, pixels []byte, width, height, maxRetries int, delay time.Duration) (int, error) {
	for retries := 0; ; retries++ {
		ok, err := enc.SubmitFrame(pixels, width, height, 0)
		if ok {
			return retries, nil
		}
		if !gferrors.IsRetryable(err) {
			return retries, err
		}
		if retries >= maxRetries {
			return retries, fmt.Errorf("gave up after %d retries: %w", retries, err)
		}
		if err := gfcontext.Sleep(ctx, delay); err != nil {
			return retries, err
		}
	}
}

// releaseArtifact revokes the published artifact once it has been written
// out. A failure only costs memory until the process exits, so it is logged.
func releaseArtifact(store *blobstore.Store, locator string, logger *slog.Logger) {
	if err := store.Revoke(locator); err != nil {
		logger.Warn("revoke artifact failed", "locator", locator, "error", err)
	}
}

func stopStore(store *blobstore.Store, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), storeStopTimeout)
	defer cancel()
	if err := store.Stop(ctx); err != nil {
		logger.Warn("stop blob store janitor failed", "error", err)
	}
}
