// Package glitch applies catalog effects to image buffers.
//
// A [Pipeline] runs one effect ([Pipeline.Apply], [Pipeline.ApplyNamed]) or
// a random sequence of effects ([Pipeline.ApplyRandom]) against a buffer it
// takes ownership of. Whenever an effect returns a different buffer than it
// was given, the pipeline releases the old one, so callers only ever hold
// the buffer returned to them.
//
// # Random Runs
//
// A random run draws effects from the catalog with the selection policy of
// its [RunConfig]. Only effects that pass the policy count toward the
// requested amount; rejected draws are redrawn and reported in
// [Result.Rejected]. A count of zero or less is a no-op that consumes no
// randomness.
//
//	p := glitch.New(effects.Default(), random.New(42), logger)
//	buf, res, err := p.ApplyRandom(ctx, buf, glitch.RunConfig{Count: 3})
package glitch

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/effects"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/observability"
	"github.com/matzehuels/glitchgen/pkg/random"
)

// RunConfig holds the parameters of one random run.
type RunConfig struct {
	Count             int
	AllowCompression  bool
	ExcludeCorruption bool // "safe" mode

	// UpdateAfterEach makes the pipeline call OnStep after every applied
	// effect so a UI can redraw intermediate results.
	UpdateAfterEach bool
	OnStep          func(step int, e effects.Effect, buf *imagebuf.Buffer)
}

// Policy returns the selection policy for the run.
func (c RunConfig) Policy() effects.Policy {
	return effects.Policy{
		AllowCompression:  c.AllowCompression,
		ExcludeCorruption: c.ExcludeCorruption,
	}
}

// Result describes a finished random run.
type Result struct {
	Applied  []effects.Effect // in application order
	Rejected int              // draws refused by the policy
	Duration time.Duration
}

// Names returns the IDs of the applied effects.
func (r Result) Names() []string {
	out := make([]string, len(r.Applied))
	for i, e := range r.Applied {
		out[i] = e.ID()
	}
	return out
}

// Pipeline applies effects from a catalog using one random source.
// It is not safe for concurrent use.
type Pipeline struct {
	Catalog *effects.Catalog
	RNG     *random.Source
	Logger  *log.Logger
}

// New creates a pipeline. A nil catalog selects effects.Default(), a nil
// rng a time-seeded source, and a nil logger log.Default().
func New(catalog *effects.Catalog, rng *random.Source, logger *log.Logger) *Pipeline {
	if catalog == nil {
		catalog = effects.Default()
	}
	if rng == nil {
		rng = random.NewFromTime()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{Catalog: catalog, RNG: rng, Logger: logger}
}

// Apply runs one effect on buf and returns the result. buf must not be
// used afterwards unless it is the returned buffer.
func (p *Pipeline) Apply(ctx context.Context, buf *imagebuf.Buffer, e effects.Effect) (*imagebuf.Buffer, error) {
	if buf == nil {
		return nil, errors.New(errors.ErrCodeNoImage, "no image to apply %s to", e.ID())
	}
	if e.Transform == nil {
		return nil, errors.New(errors.ErrCodeInternal, "effect %s has no transform", e.ID())
	}

	start := time.Now()
	out := e.Transform(buf, p.RNG)
	if out == nil {
		return nil, errors.New(errors.ErrCodeInternal, "effect %s returned no image", e.ID())
	}
	if out != buf {
		out.SetFormat(buf.Format())
		buf.Release()
	}
	elapsed := time.Since(start)

	p.Logger.Debug("applied effect", "effect", e.ID(), "size", out.Bounds().Size(), "duration", elapsed)
	observability.Pipeline().OnEffectApplied(ctx, e.ID(), elapsed)
	return out, nil
}

// ApplyNamed looks up an effect by name and applies it. Named effects are
// always allowed, whatever their category.
func (p *Pipeline) ApplyNamed(ctx context.Context, buf *imagebuf.Buffer, name string) (*imagebuf.Buffer, effects.Effect, error) {
	e, ok := p.Catalog.Lookup(name)
	if !ok {
		return nil, effects.Effect{}, errors.New(errors.ErrCodeUnknownEffect, "unknown effect %q", name)
	}
	out, err := p.Apply(ctx, buf, e)
	return out, e, err
}

// ApplyRandom applies cfg.Count policy-passing effects in sequence.
//
// On error the returned buffer is the last valid state of the image, so the
// caller keeps ownership of something usable.
func (p *Pipeline) ApplyRandom(ctx context.Context, buf *imagebuf.Buffer, cfg RunConfig) (*imagebuf.Buffer, Result, error) {
	var res Result
	if cfg.Count <= 0 {
		return buf, res, nil
	}
	if buf == nil {
		return nil, res, errors.New(errors.ErrCodeNoImage, "no image to glitch")
	}

	start := time.Now()
	policy := cfg.Policy()
	observability.Pipeline().OnRunStart(ctx, cfg.Count)
	p.Logger.Debug("random run", "count", cfg.Count,
		"allow_compression", cfg.AllowCompression, "exclude_corruption", cfg.ExcludeCorruption)

	finish := func(err error) (*imagebuf.Buffer, Result, error) {
		res.Duration = time.Since(start)
		observability.Pipeline().OnRunComplete(ctx, len(res.Applied), res.Rejected, res.Duration, err)
		return buf, res, err
	}

	for remaining := cfg.Count; remaining > 0; remaining-- {
		if err := ctx.Err(); err != nil {
			return finish(errors.Wrap(errors.ErrCodeCanceled, err, "random run stopped after %d of %d effects", len(res.Applied), cfg.Count))
		}

		e, rejected, err := p.Catalog.PickRandomMatching(p.RNG, policy.Allows)
		res.Rejected += rejected
		if err != nil {
			return finish(err)
		}

		out, err := p.Apply(ctx, buf, e)
		if err != nil {
			return finish(err)
		}
		buf = out
		res.Applied = append(res.Applied, e)

		if cfg.UpdateAfterEach && cfg.OnStep != nil {
			cfg.OnStep(len(res.Applied), e, buf)
		}
	}
	return finish(nil)
}
