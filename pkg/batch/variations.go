// Package batch runs repeated glitch passes over one or many images.
//
// [Runner.GenerateVariations] makes N independent random runs from one
// pristine source image, writes them as numbered PNG files and composes a
// collage of the first ten. [Runner.ProcessFolder] glitches a list of files
// once each and writes the results next to the inputs.
//
// Both operations have partial-failure semantics: a run or file that fails
// is recorded on its result entry and the batch moves on. Only setup
// errors (invalid options, an output directory that cannot be created) and
// cancellation abort a batch.
//
// Runs are sequential and share the pipeline's random source, so a batch
// started from a fixed seed always produces the same files.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/glitch"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/observability"
)

// Runner drives batch operations through a pipeline.
type Runner struct {
	Pipeline *glitch.Pipeline
}

// NewRunner creates a runner. A nil pipeline gets glitch.New defaults.
func NewRunner(p *glitch.Pipeline) *Runner {
	if p == nil {
		p = glitch.New(nil, nil, nil)
	}
	return &Runner{Pipeline: p}
}

// Variation is the outcome of one variation run.
type Variation struct {
	Index   int
	Path    string           // written file; empty if saving failed
	Effects []string         // applied effect IDs in order
	Image   *imagebuf.Buffer // nil if the run failed
	Err     error
}

// VariationResult is the outcome of GenerateVariations.
type VariationResult struct {
	Dir         string
	Variations  []Variation
	CollagePath string // empty if no collage was written
	CollageErr  error
	Duration    time.Duration
}

// Failed returns the number of variations with an error.
func (r *VariationResult) Failed() int {
	n := 0
	for _, v := range r.Variations {
		if v.Err != nil {
			n++
		}
	}
	return n
}

// Release frees every variation image.
func (r *VariationResult) Release() {
	for i := range r.Variations {
		if img := r.Variations[i].Image; img != nil && !img.Released() {
			img.Release()
		}
		r.Variations[i].Image = nil
	}
}

// VariationFile returns the file name of variation i ("00.png", "01.png", ...).
func VariationFile(i int) string {
	return fmt.Sprintf("%02d.png", i)
}

// GenerateVariations runs opts.Count independent random passes, each from a
// fresh clone of src, and writes them into opts.OutputDir. src is never
// modified.
//
// Each run uses a count drawn from opts.Range with compression effects
// disallowed and corruption effects allowed.
func (r *Runner) GenerateVariations(ctx context.Context, src *imagebuf.Buffer, opts VariationOptions) (*VariationResult, error) {
	if src == nil {
		return nil, errors.New(errors.ErrCodeNoImage, "no source image for variations")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	dir, err := prepareDir(opts.OutputDir, "glitchgen-variations-")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &VariationResult{Dir: dir}
	failed := 0

	for i := 0; i < opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, errors.Wrap(errors.ErrCodeCanceled, err, "variations stopped after %d of %d", i, opts.Count)
		}
		if opts.Progress != nil {
			opts.Progress(i, opts.Count)
		}

		v := r.variation(ctx, src, i, dir, opts)
		if v.Err != nil {
			failed++
			logger.Warn("variation failed", "index", i, "error", v.Err)
		} else {
			logger.Debug("variation", "index", i, "effects", v.Effects, "path", v.Path)
		}
		result.Variations = append(result.Variations, v)
		observability.Batch().OnItemComplete(ctx, "variations", i, opts.Count, v.Err)
	}

	if !opts.NoCollage {
		path := filepath.Join(dir, CollageFile)
		collage, err := Compose(src.Width(), src.Height(), result.Variations, opts.Collage)
		if err == nil {
			err = collage.Save(path)
			collage.Release()
		}
		if err != nil {
			result.CollageErr = err
			logger.Warn("collage failed", "error", err)
		} else {
			result.CollagePath = path
		}
	}

	result.Duration = time.Since(start)
	observability.Batch().OnBatchComplete(ctx, "variations", opts.Count-failed, failed, result.Duration)
	return result, nil
}

func (r *Runner) variation(ctx context.Context, src *imagebuf.Buffer, i int, dir string, opts VariationOptions) Variation {
	v := Variation{Index: i}
	count := opts.Range.Draw(r.Pipeline.RNG)

	buf, res, err := r.Pipeline.ApplyRandom(ctx, src.Clone(), glitch.RunConfig{
		Count:            count,
		AllowCompression: false,
	})
	v.Effects = res.Names()
	if err != nil {
		buf.Release()
		v.Err = err
		return v
	}
	v.Image = buf

	path := filepath.Join(dir, VariationFile(i))
	if err := buf.Save(path); err != nil {
		v.Err = err
		return v
	}
	v.Path = path
	return v
}

// prepareDir creates dir, or a new temp dir when dir is empty.
func prepareDir(dir, tempPattern string) (string, error) {
	if dir == "" {
		d, err := os.MkdirTemp("", tempPattern)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeSourceSave, err, "create output directory")
		}
		return d, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeSourceSave, err, "create output directory %s", dir)
	}
	return dir, nil
}
