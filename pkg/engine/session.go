// Package engine is the per-document facade over the glitch pipeline, the
// undo history and the batch runner.
//
// A [Session] owns exactly one live image. Every successful edit pushes one
// snapshot onto the history, so [Session.Undo] always steps back one user
// action no matter how many effects that action applied. All methods are
// safe for concurrent use; they serialize on the session.
//
//	s, err := engine.New(ctx, engine.Options{Config: cfg, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	defer s.Close(ctx)
//
//	if err := s.Load(ctx, "photo.jpg"); err != nil {
//	    return err
//	}
//	if _, err := s.RandomMultiple(ctx); err != nil {
//	    return err
//	}
//	return s.Export("photo-glitched.png")
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/batch"
	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/effects"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/glitch"
	"github.com/matzehuels/glitchgen/pkg/history"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

// Options configures a Session.
type Options struct {
	// Config supplies history, preset and export settings. Nil means
	// config.Default().
	Config *config.Config

	// Store overrides the history store built from Config.History. The
	// session takes ownership and closes it.
	Store history.Store

	Catalog *effects.Catalog
	RNG     *random.Source // overrides Config.Seed
	Logger  *log.Logger
}

// Session is one open document.
type Session struct {
	mu       sync.Mutex
	cfg      *config.Config
	pipeline *glitch.Pipeline
	history  *history.Stack
	current  *imagebuf.Buffer
	logger   *log.Logger
	closed   bool
}

// New creates a session with no image loaded.
func New(ctx context.Context, opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	rng := opts.RNG
	if rng == nil {
		if cfg.Seed != 0 {
			rng = random.New(cfg.Seed)
		} else {
			rng = random.NewFromTime()
		}
	}

	store := opts.Store
	if store == nil {
		var err error
		if store, err = OpenStore(ctx, cfg.History); err != nil {
			return nil, err
		}
	}

	s := &Session{
		cfg:      cfg,
		pipeline: glitch.New(opts.Catalog, rng, logger),
		history: history.New(store,
			history.WithMaxEntries(cfg.History.MaxEntries),
			history.WithLogger(logger)),
		logger: logger,
	}
	logger.Debug("session opened", "seed", rng.Seed(), "history", cfg.History.Backend)
	return s, nil
}

// Load decodes the image at path and makes it the base of a fresh history.
func (s *Session) Load(ctx context.Context, path string) error {
	buf, err := imagebuf.Open(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked(ctx, buf, "open "+filepath.Base(path))
}

// Generate creates a width x height image with the named generator effect
// and makes it the base of a fresh history.
func (s *Session) Generate(ctx context.Context, generator string, width, height int) error {
	e, ok := s.pipeline.Catalog.Lookup(generator)
	if !ok {
		return errors.New(errors.ErrCodeUnknownEffect, "unknown generator %q", generator)
	}
	if !e.Generator {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a generator", e.ID())
	}
	if err := errors.ValidateDimensions(width, height); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf, err := s.pipeline.Apply(ctx, imagebuf.New(width, height), e)
	if err != nil {
		return err
	}
	return s.resetLocked(ctx, buf, "generate "+e.Name)
}

func (s *Session) resetLocked(ctx context.Context, buf *imagebuf.Buffer, label string) error {
	if _, err := s.history.Reset(ctx, buf, label); err != nil {
		buf.Release()
		s.setCurrent(nil)
		return err
	}
	s.setCurrent(buf)
	s.logger.Info("image ready", "label", label, "size", fmt.Sprintf("%dx%d", buf.Width(), buf.Height()))
	return nil
}

func (s *Session) setCurrent(buf *imagebuf.Buffer) {
	if s.current != nil && s.current != buf && !s.current.Released() {
		s.current.Release()
	}
	s.current = buf
}

func (s *Session) requireImage() error {
	if s.closed {
		return errors.New(errors.ErrCodeInternal, "session is closed")
	}
	if s.current == nil {
		return errors.New(errors.ErrCodeNoImage, "no image loaded")
	}
	return nil
}

// ApplyNamed applies one effect by name or ID and records it in history.
// If the effect or the history push fails, the image is left unchanged.
func (s *Session) ApplyNamed(ctx context.Context, name string) (effects.Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return effects.Effect{}, err
	}

	out, e, err := s.pipeline.ApplyNamed(ctx, s.current.Clone(), name)
	if err != nil {
		return e, err
	}
	if _, err := s.history.Push(ctx, out, e.ID()); err != nil {
		out.Release()
		return e, err
	}
	s.setCurrent(out)
	return e, nil
}

// ApplyRandom runs a random sequence and records it as one history entry.
// A count of zero or less changes nothing and pushes nothing.
//
// If the run fails partway, the effects already applied stay on the image
// and are still recorded, so undo returns to the state before the run. If
// the history push fails, the image is left as it was before the run.
func (s *Session) ApplyRandom(ctx context.Context, cfg glitch.RunConfig) (glitch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return glitch.Result{}, err
	}
	return s.applyRandomLocked(ctx, cfg)
}

func (s *Session) applyRandomLocked(ctx context.Context, cfg glitch.RunConfig) (glitch.Result, error) {
	if cfg.Count <= 0 {
		return glitch.Result{}, nil
	}

	out, res, runErr := s.pipeline.ApplyRandom(ctx, s.current.Clone(), cfg)
	if len(res.Applied) == 0 {
		out.Release()
		return res, runErr
	}
	if _, err := s.history.Push(ctx, out, runLabel(res)); err != nil {
		out.Release()
		return res, err
	}
	s.setCurrent(out)
	return res, runErr
}

func runLabel(res glitch.Result) string {
	if len(res.Applied) == 1 {
		return res.Applied[0].ID()
	}
	names := make([]string, len(res.Applied))
	for i, e := range res.Applied {
		names[i] = e.Name
	}
	return fmt.Sprintf("random x%d (%s)", len(names), strings.Join(names, ", "))
}

// RandomOne applies one random effect, compression allowed.
func (s *Session) RandomOne(ctx context.Context) (glitch.Result, error) {
	return s.ApplyRandom(ctx, glitch.RunConfig{Count: 1, AllowCompression: true})
}

// RandomMultiple applies a random run with a count drawn from the
// configured multiple range, compression allowed.
func (s *Session) RandomMultiple(ctx context.Context) (glitch.Result, error) {
	return s.randomMultiple(ctx, true)
}

// RandomMultipleNoCompression is RandomMultiple without compression effects.
func (s *Session) RandomMultipleNoCompression(ctx context.Context) (glitch.Result, error) {
	return s.randomMultiple(ctx, false)
}

// randomMultiple draws the run length only once an image is loaded, so a
// failed call leaves the random stream untouched.
func (s *Session) randomMultiple(ctx context.Context, allowCompression bool) (glitch.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return glitch.Result{}, err
	}
	return s.applyRandomLocked(ctx, glitch.RunConfig{
		Count:            s.drawMultipleLocked(),
		AllowCompression: allowCompression,
	})
}

// DrawMultiple draws a run length from the configured multiple range.
func (s *Session) DrawMultiple() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawMultipleLocked()
}

func (s *Session) drawMultipleLocked() int {
	return s.pipeline.RNG.Range(s.cfg.Random.MultipleMin, s.cfg.Random.MultipleMax)
}

// Undo restores the previous history state. On the base image it fails
// with EMPTY_HISTORY and leaves everything unchanged.
func (s *Session) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return err
	}

	prev, err := s.history.Undo(ctx)
	if err != nil {
		return err
	}
	s.setCurrent(prev)
	return nil
}

// Export writes the current image to path. The format follows the
// extension; JPEG uses the configured quality.
func (s *Session) Export(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return err
	}
	if err := s.current.Save(path, imagebuf.WithJPEGQuality(s.cfg.Export.JPEGQuality)); err != nil {
		return err
	}
	s.logger.Info("exported", "path", path)
	return nil
}

// Variations writes a variation batch of the current image. The image and
// the history are not touched. Unset fields of opts come from the config.
// The caller releases the result.
func (s *Session) Variations(ctx context.Context, opts batch.VariationOptions) (*batch.VariationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireImage(); err != nil {
		return nil, err
	}

	defaults := s.cfg.VariationOptions()
	if opts.Count == 0 {
		opts.Count = defaults.Count
	}
	if opts.Range == (batch.EffectRange{}) {
		opts.Range = defaults.Range
	}
	if opts.Collage == "" {
		opts.Collage = defaults.Collage
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return batch.NewRunner(s.pipeline).GenerateVariations(ctx, s.current, opts)
}

// ProcessFolder runs a folder batch with the session's random source. It
// does not need or touch the current image.
func (s *Session) ProcessFolder(ctx context.Context, paths []string, opts batch.FolderOptions) (*batch.FolderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Range == (batch.EffectRange{}) {
		opts.Range = s.cfg.FolderOptions().Range
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return batch.NewRunner(s.pipeline).ProcessFolder(ctx, paths, opts)
}

// Current returns a copy of the current image, or nil before a load.
func (s *Session) Current() *imagebuf.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Format returns the format the current image was loaded as, which
// decides the default export extension. It is PNG before a load.
func (s *Session) Format() imagebuf.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return imagebuf.PNG
	}
	return s.current.Format()
}

// HasImage reports whether an image is loaded.
func (s *Session) HasImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// CanUndo reports whether Undo would succeed.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// History returns the history entries, base first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Location returns where the newest snapshot is stored, or "" if the
// history is empty.
func (s *Session) Location() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	top, ok := s.history.Top()
	if !ok {
		return ""
	}
	return Location(s.history.Store(), top)
}

// Catalog returns the effect catalog in use.
func (s *Session) Catalog() *effects.Catalog { return s.pipeline.Catalog }

// Seed returns the seed of the session's random source.
func (s *Session) Seed() uint64 { return s.pipeline.RNG.Seed() }

// Close drops the history and its store and releases the current image.
// Calling Close more than once is a no-op.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.setCurrent(nil)
	return s.history.Close(ctx)
}
