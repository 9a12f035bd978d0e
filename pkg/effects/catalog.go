// Package effects defines the glitch effect catalog.
//
// Every effect is a named entry in a category with explicit tag flags
// ([Effect.Compression], [Effect.Corruption], [Effect.Generator]) that
// drive random selection policy. The catalog is a static table built once by
// [Default]; there is no runtime discovery.
//
// # Selection
//
// [Catalog.PickRandom] draws uniformly from the flat list.
// [Catalog.PickRandomMatching] redraws uniformly from the full list (not a
// filtered view) until the predicate accepts, so the distribution over
// accepted effects is the same as the flat draw conditioned on the
// predicate. A predicate that matches nothing is rejected up front with
// POLICY_UNSATISFIABLE instead of looping.
//
//	e, _, err := effects.Default().PickRandomMatching(rng, effects.Policy{
//	    AllowCompression: false,
//	}.Allows)
package effects

import (
	"strings"
	"sync"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

// MaxRedraws bounds the number of draws PickRandomMatching performs before
// giving up.
const MaxRedraws = 10000

// Category names in registration order.
const (
	CategoryColor       = "Color"
	CategoryCompression = "Compression"
	CategoryCorruption  = "Corruption"
	CategoryNoise       = "Noise"
	CategoryGeometric   = "Geometric"
	CategoryOverlay     = "Overlay"
	CategoryGenerate    = "Generate"
)

// Transform turns a buffer into its glitched form. It may mutate buf and
// return it, or return a new buffer. The only randomness it may use is rng.
type Transform func(buf *imagebuf.Buffer, rng *random.Source) *imagebuf.Buffer

// Effect is one catalog entry.
type Effect struct {
	Category    string
	Name        string
	Compression bool // lossy-compression style artifact
	Corruption  bool // data-corruption style artifact
	Generator   bool // ignores input pixels, keeps dimensions
	Transform   Transform
}

// ID returns "Category/Name".
func (e Effect) ID() string { return e.Category + "/" + e.Name }

// String implements fmt.Stringer.
func (e Effect) String() string { return e.ID() }

// Predicate accepts or rejects an effect during random selection.
type Predicate func(Effect) bool

// Policy is the random-run selection policy.
type Policy struct {
	AllowCompression  bool
	ExcludeCorruption bool
}

// Allows reports whether e may be chosen under p.
func (p Policy) Allows(e Effect) bool {
	return (!e.Compression || p.AllowCompression) && (!e.Corruption || !p.ExcludeCorruption)
}

// Catalog is an ordered, read-only set of effects.
type Catalog struct {
	effects    []Effect
	categories []string
	byName     map[string]int
}

// NewCatalog builds a catalog from effects in the given order. Category
// order is the order in which categories first appear.
func NewCatalog(effects ...Effect) *Catalog {
	c := &Catalog{
		effects: make([]Effect, 0, len(effects)),
		byName:  make(map[string]int, 2*len(effects)),
	}
	seen := make(map[string]bool)
	for _, e := range effects {
		if !seen[e.Category] {
			seen[e.Category] = true
			c.categories = append(c.categories, e.Category)
		}
	}
	// Group by category while keeping within-category registration order.
	for _, cat := range c.categories {
		for _, e := range effects {
			if e.Category != cat {
				continue
			}
			idx := len(c.effects)
			c.effects = append(c.effects, e)
			c.byName[strings.ToLower(e.ID())] = idx
			if _, dup := c.byName[strings.ToLower(e.Name)]; !dup {
				c.byName[strings.ToLower(e.Name)] = idx
			}
		}
	}
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		var all []Effect
		all = append(all, colorEffects()...)
		all = append(all, compressionEffects()...)
		all = append(all, corruptionEffects()...)
		all = append(all, noiseEffects()...)
		all = append(all, geometricEffects()...)
		all = append(all, overlayEffects()...)
		all = append(all, generateEffects()...)
		defaultCatalog = NewCatalog(all...)
	})
	return defaultCatalog
}

// All returns every effect, grouped by category. The slice is a copy.
func (c *Catalog) All() []Effect {
	out := make([]Effect, len(c.effects))
	copy(out, c.effects)
	return out
}

// Len returns the number of effects.
func (c *Catalog) Len() int { return len(c.effects) }

// Categories returns category names in registration order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByCategory returns the effects of one category (case-insensitive).
func (c *Catalog) ByCategory(category string) []Effect {
	var out []Effect
	for _, e := range c.effects {
		if strings.EqualFold(e.Category, category) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an effect by name or "Category/Name", case-insensitively.
func (c *Catalog) Lookup(name string) (Effect, bool) {
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Effect{}, false
	}
	return c.effects[idx], true
}

// Generators returns the effects tagged as generators.
func (c *Catalog) Generators() []Effect {
	return c.Filter(func(e Effect) bool { return e.Generator })
}

// Filter returns the effects accepted by pred in catalog order.
func (c *Catalog) Filter(pred Predicate) []Effect {
	var out []Effect
	for _, e := range c.effects {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// PickRandom draws one effect uniformly. It panics on an empty catalog.
func (c *Catalog) PickRandom(rng *random.Source) Effect {
	return c.effects[rng.IntN(len(c.effects))]
}

// PickRandomMatching redraws uniformly over the whole catalog until pred
// accepts. It returns the accepted effect and the number of rejected draws.
//
// At least one effect must satisfy pred. This is checked before drawing,
// without consuming randomness, and fails with POLICY_UNSATISFIABLE.
func (c *Catalog) PickRandomMatching(rng *random.Source, pred Predicate) (Effect, int, error) {
	if len(c.Filter(pred)) == 0 {
		return Effect{}, 0, errors.New(errors.ErrCodePolicyUnsatisfiable,
			"no effect in the catalog satisfies the selection policy")
	}
	for rejected := 0; rejected < MaxRedraws; rejected++ {
		e := c.PickRandom(rng)
		if pred(e) {
			return e, rejected, nil
		}
	}
	return Effect{}, MaxRedraws, errors.New(errors.ErrCodePolicyUnsatisfiable,
		"no matching effect after %d draws", MaxRedraws)
}
