package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/m2t/internal/dataset"
	"github.com/rshade/m2t/internal/logging"
	"github.com/rshade/m2t/internal/normalize"
	"github.com/rshade/m2t/internal/progress"
)

// FailurePolicy decides what the batch does after a file fails.
type FailurePolicy int

const (
	// FailFast stops at the first failed file; later files are not attempted.
	FailFast FailurePolicy = iota
	// Continue attempts every file and returns all failures joined.
	Continue
)

// String returns the configuration name of the policy.
func (p FailurePolicy) String() string {
	if p == Continue {
		return "continue"
	}
	return "fail-fast"
}

// ParseFailurePolicy maps a configuration name to a policy.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch name {
	case "fail-fast", "":
		return FailFast, nil
	case "continue":
		return Continue, nil
	default:
		return FailFast, fmt.Errorf("unknown failure policy %q", name)
	}
}

// description labels the progress line.
const description = "Converting"

// ErrNoInputs is returned when Convert is called without paths.
var ErrNoInputs = errors.New("no input files")

// Options configure a Converter.
type Options struct {
	// OutDir is where <stem>.tif files are written. Empty means the working directory.
	OutDir string
	// BlockSize is the number of samples read per block.
	BlockSize int
	// MaxSamples caps the statistical view used for percentiles. Zero is exact.
	MaxSamples int
	// Policy selects fail-fast or continue-on-error.
	Policy FailurePolicy
	// Compress enables deflate compression of the output TIFF.
	Compress bool
	// Renderer displays progress. Nil disables progress output.
	Renderer progress.Renderer
}

// Converter converts files one at a time.
type Converter struct {
	opts Options
	open func(path string, opts ...dataset.Option) (*dataset.Handle, error)
}

// New creates a Converter.
func New(opts Options) *Converter {
	if opts.BlockSize <= 0 {
		opts.BlockSize = dataset.DefaultBlockSize
	}
	if opts.Renderer == nil {
		opts.Renderer = progress.Nop{}
	}
	return &Converter{opts: opts, open: dataset.Open}
}

// Result is the outcome of one Task.
type Result struct {
	Task     Task
	Params   normalize.Params
	Exact    bool
	Samples  int
	Duration time.Duration
	Err      error
}

// Summary describes a finished (or stopped) batch.
type Summary struct {
	Results []Result
	Total   int
	Elapsed time.Duration
}

// Converted returns the number of files written successfully.
func (s Summary) Converted() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error.
func (s Summary) Failed() []Result {
	var failed []Result
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Samples returns the number of samples in all converted files.
func (s Summary) Samples() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n += r.Samples
		}
	}
	return n
}

// Skipped returns the number of files that were never attempted.
func (s Summary) Skipped() int {
	return s.Total - len(s.Results)
}

// FileError wraps a failure with the file it belongs to.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Convert runs the batch over paths in order and returns once every path has
// been attempted, or after the first failure under FailFast. Cancellation of
// ctx is honoured between files.
func (c *Converter) Convert(ctx context.Context, paths []string) (Summary, error) {
	if len(paths) == 0 {
		return Summary{}, ErrNoInputs
	}

	outDir := c.opts.OutDir
	if outDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Summary{}, fmt.Errorf("resolving working directory: %w", err)
		}
		outDir = wd
	}

	log := logging.ComponentLogger(*logging.FromContext(ctx), "convert")
	tasks := Tasks(paths, outDir)
	summary := Summary{Total: len(tasks), Results: make([]Result, 0, len(tasks))}

	state := progress.NewState(description, len(tasks))
	state.Start()
	c.opts.Renderer.Start(state.Snapshot())
	defer func() {
		summary.Elapsed = state.ElapsedTime()
		c.opts.Renderer.Finish(state.Snapshot())
	}()

	var errs []error
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return summary, errors.Join(append(errs, err)...)
		}

		result := c.convertOne(ctx, log, task)
		summary.Results = append(summary.Results, result)

		state.Advance(task.Input, result.Err)
		c.opts.Renderer.Update(state.Snapshot())

		if result.Err == nil {
			continue
		}
		fileErr := &FileError{Path: task.Input, Err: result.Err}
		log.Error().Err(result.Err).Str("file", task.Input).Msg("conversion failed")
		if c.opts.Policy == FailFast {
			return summary, fileErr
		}
		errs = append(errs, fileErr)
	}

	return summary, errors.Join(errs...)
}

// convertOne runs load -> normalize -> downcast -> save for a single task.
func (c *Converter) convertOne(ctx context.Context, log zerolog.Logger, task Task) Result {
	start := time.Now()
	result := Result{Task: task}
	result.Err = c.process(ctx, log, &result)
	result.Duration = time.Since(start)
	if result.Err == nil {
		log.Debug().
			Ctx(ctx).
			Str("file", task.Input).
			Str("output", task.Output).
			Float64("vmin", result.Params.VMin).
			Float64("vmax", result.Params.VMax).
			Bool("exact", result.Exact).
			Dur("duration", result.Duration).
			Msg("converted")
	}
	return result
}

func (c *Converter) process(ctx context.Context, log zerolog.Logger, result *Result) (err error) {
	task := result.Task

	h, err := c.open(task.Input, dataset.WithLazy(true), dataset.WithBlockSize(c.opts.BlockSize))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := h.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", task.Input, closeErr)
		}
	}()

	result.Samples = h.Len()
	log.Debug().
		Ctx(ctx).
		Str("file", task.Input).
		Ints("shape", h.Shape()).
		Stringer("dtype", h.DType()).
		Int("samples", h.Len()).
		Msg("opened")

	sampler := normalize.NewSampler(h.Len(), c.opts.MaxSamples)
	err = h.Blocks(func(_ int, block []float64) error {
		sampler.Add(block)
		return nil
	})
	if err != nil {
		return err
	}
	if e := log.Debug(); e.Enabled() {
		stats := normalize.Describe(sampler.Values())
		e.Ctx(ctx).
			Str("file", task.Input).
			Float64("min", stats.Min).
			Float64("max", stats.Max).
			Float64("mean", stats.Mean).
			Float64("stddev", stats.StdDev).
			Int("non_finite", stats.NonFinite).
			Msg("intensity statistics")
	}

	result.Params, err = sampler.Params()
	if err != nil {
		return err
	}
	result.Exact = sampler.Exact()

	if _, err = h.Map(normalizeBlock(result.Params), dataset.InPlace()); err != nil {
		return err
	}
	if err = h.ChangeDtype(dataset.Uint8); err != nil {
		return err
	}
	return h.Save(task.Output, dataset.Overwrite(true), dataset.Compress(c.opts.Compress))
}

// normalizeBlock adapts Params to an in-place block transform. Outputs are
// whole numbers in [0,255] stored as float64.
func normalizeBlock(params normalize.Params) dataset.BlockFunc {
	var scratch []uint8
	return func(block []float64) {
		if cap(scratch) < len(block) {
			scratch = make([]uint8, len(block))
		}
		out := scratch[:len(block)]
		params.ApplyBlock(out, block)
		for i, v := range out {
			block[i] = float64(v)
		}
	}
}
