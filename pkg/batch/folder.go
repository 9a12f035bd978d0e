package batch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/glitch"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/observability"
)

// FileResult is the outcome for one input of a folder batch.
type FileResult struct {
	Input   string
	Output  string   // empty on failure
	Effects []string // applied effect IDs in order
	Err     error
}

// FolderResult is the outcome of ProcessFolder.
type FolderResult struct {
	Dir      string
	Files    []FileResult
	Duration time.Duration
}

// Succeeded returns the number of files written.
func (r *FolderResult) Succeeded() int { return len(r.Files) - r.Failed() }

// Failed returns the number of files that could not be processed.
func (r *FolderResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// OutputName returns the PNG file name written for input.
func OutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// ProcessFolder loads each path, applies one random run and saves the
// result as "<basename>.png" in the output directory. A file that fails to
// load (SOURCE_LOAD_FAILURE) or save (SOURCE_SAVE_FAILURE) is recorded and
// the remaining files are still processed.
func (r *Runner) ProcessFolder(ctx context.Context, paths []string, opts FolderOptions) (*FolderResult, error) {
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input files")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(paths[0]), FolderDirName(opts.Started))
	}
	dir, err := prepareDir(dir, "")
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := &FolderResult{Dir: dir}
	failed := 0

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, errors.Wrap(errors.ErrCodeCanceled, err, "folder batch stopped after %d of %d files", i, len(paths))
		}
		if opts.Progress != nil {
			opts.Progress(i, len(paths))
		}

		fr := r.processFile(ctx, path, dir, opts)
		if fr.Err != nil {
			failed++
			logger.Warn("file failed", "input", path, "error", fr.Err)
		} else {
			logger.Debug("file done", "input", path, "output", fr.Output, "effects", fr.Effects)
		}
		result.Files = append(result.Files, fr)
		observability.Batch().OnItemComplete(ctx, "folder", i, len(paths), fr.Err)
	}

	result.Duration = time.Since(start)
	observability.Batch().OnBatchComplete(ctx, "folder", len(paths)-failed, failed, result.Duration)
	return result, nil
}

func (r *Runner) processFile(ctx context.Context, path, dir string, opts FolderOptions) FileResult {
	fr := FileResult{Input: path}

	buf, err := imagebuf.Open(path)
	if err != nil {
		fr.Err = err
		return fr
	}

	buf, res, err := r.Pipeline.ApplyRandom(ctx, buf, glitch.RunConfig{
		Count:            opts.Range.Draw(r.Pipeline.RNG),
		AllowCompression: false,
	})
	defer buf.Release()
	fr.Effects = res.Names()
	if err != nil {
		fr.Err = err
		return fr
	}

	out := filepath.Join(dir, OutputName(path))
	if err := buf.Save(out); err != nil {
		fr.Err = errors.Wrap(errors.ErrCodeSourceSave, err, "save %s", out)
		return fr
	}
	fr.Output = out
	return fr
}
