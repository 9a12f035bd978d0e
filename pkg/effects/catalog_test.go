package effects

import (
	"image/color"
	"testing"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func TestDefaultCatalogNotEmpty(t *testing.T) {
	c := Default()
	if c.Len() == 0 {
		t.Fatal("default catalog is empty")
	}
	if Default() != c {
		t.Error("Default() should return the same catalog every time")
	}
}

func TestCategoryOrderIsRegistrationOrder(t *testing.T) {
	want := []string{
		CategoryColor, CategoryCompression, CategoryCorruption, CategoryNoise,
		CategoryGeometric, CategoryOverlay, CategoryGenerate,
	}
	got := Default().Categories()
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllGroupedByCategory(t *testing.T) {
	all := Default().All()
	seen := map[string]bool{}
	for i, e := range all {
		if i > 0 && all[i-1].Category != e.Category && seen[e.Category] {
			t.Fatalf("category %q appears in two separate groups", e.Category)
		}
		seen[e.Category] = true
	}
}

func TestTagsMatchCategories(t *testing.T) {
	for _, e := range Default().All() {
		if e.Compression != (e.Category == CategoryCompression) {
			t.Errorf("%s: Compression tag = %v", e.ID(), e.Compression)
		}
		if e.Corruption != (e.Category == CategoryCorruption) {
			t.Errorf("%s: Corruption tag = %v", e.ID(), e.Corruption)
		}
		if e.Generator != (e.Category == CategoryGenerate) {
			t.Errorf("%s: Generator tag = %v", e.ID(), e.Generator)
		}
		if e.Transform == nil {
			t.Errorf("%s: nil transform", e.ID())
		}
	}
}

func TestNewCatalogGroupsInterleavedInput(t *testing.T) {
	noop := func(b *imagebuf.Buffer, _ *random.Source) *imagebuf.Buffer { return b }
	c := NewCatalog(
		Effect{Category: "A", Name: "a1", Transform: noop},
		Effect{Category: "B", Name: "b1", Transform: noop},
		Effect{Category: "A", Name: "a2", Transform: noop},
	)
	var names []string
	for _, e := range c.All() {
		names = append(names, e.Name)
	}
	want := []string{"a1", "a2", "b1"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("All() names = %v, want %v", names, want)
		}
	}
}

func TestLookup(t *testing.T) {
	c := Default()
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"Invert", "Color/Invert", true},
		{"invert", "Color/Invert", true},
		{"  pixel sort ", "Corruption/Pixel Sort", true},
		{"compression/jpeg crush", "Compression/JPEG Crush", true},
		{"Plasma", "Generate/Plasma", true},
		{"nope", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e, ok := c.Lookup(tt.query)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.query, ok, tt.ok)
			}
			if ok && e.ID() != tt.want {
				t.Errorf("Lookup(%q) = %s, want %s", tt.query, e.ID(), tt.want)
			}
		})
	}
}

func TestPolicyAllows(t *testing.T) {
	plain := Effect{Name: "plain"}
	comp := Effect{Name: "comp", Compression: true}
	corr := Effect{Name: "corr", Corruption: true}

	tests := []struct {
		policy Policy
		effect Effect
		want   bool
	}{
		{Policy{}, plain, true},
		{Policy{}, comp, false},
		{Policy{}, corr, true},
		{Policy{AllowCompression: true}, comp, true},
		{Policy{ExcludeCorruption: true}, corr, false},
		{Policy{AllowCompression: true, ExcludeCorruption: true}, corr, false},
		{Policy{AllowCompression: true, ExcludeCorruption: true}, comp, true},
	}
	for _, tt := range tests {
		if got := tt.policy.Allows(tt.effect); got != tt.want {
			t.Errorf("%+v.Allows(%s) = %v, want %v", tt.policy, tt.effect.Name, got, tt.want)
		}
	}
}

func TestPickRandomMatchingHonoursPredicate(t *testing.T) {
	c := Default()
	rng := random.New(random.DefaultSeed)
	policy := Policy{AllowCompression: false, ExcludeCorruption: true}
	for i := 0; i < 500; i++ {
		e, _, err := c.PickRandomMatching(rng, policy.Allows)
		if err != nil {
			t.Fatalf("PickRandomMatching() error: %v", err)
		}
		if e.Compression || e.Corruption {
			t.Fatalf("picked %s despite policy", e.ID())
		}
	}
}

func TestPickRandomMatchingUnsatisfiable(t *testing.T) {
	c := Default()
	rng := random.New(1)
	probe := random.New(1)

	_, _, err := c.PickRandomMatching(rng, func(Effect) bool { return false })
	if !errors.Is(err, errors.ErrCodePolicyUnsatisfiable) {
		t.Fatalf("error = %v, want POLICY_UNSATISFIABLE", err)
	}
	// No randomness may be consumed by a rejected policy.
	if rng.IntN(1<<30) != probe.IntN(1<<30) {
		t.Error("unsatisfiable policy consumed random draws")
	}
}

func TestPickRandomIsDeterministic(t *testing.T) {
	a, b := random.New(99), random.New(99)
	c := Default()
	for i := 0; i < 50; i++ {
		if x, y := c.PickRandom(a), c.PickRandom(b); x.ID() != y.ID() {
			t.Fatalf("draw %d: %s != %s", i, x.ID(), y.ID())
		}
	}
}

func TestGenerators(t *testing.T) {
	gens := Default().Generators()
	if len(gens) == 0 {
		t.Fatal("no generators registered")
	}
	for _, g := range gens {
		if !g.Generator {
			t.Errorf("%s returned by Generators() without tag", g.ID())
		}
	}
}

func TestByCategory(t *testing.T) {
	got := Default().ByCategory("compression")
	if len(got) != 4 {
		t.Fatalf("ByCategory(compression) returned %d effects, want 4", len(got))
	}
	if got[0].Name != "JPEG Crush" {
		t.Errorf("first compression effect = %q, want JPEG Crush", got[0].Name)
	}
}

func testImage(w, h int) *imagebuf.Buffer {
	b := imagebuf.New(w, h)
	img := b.Image()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(1, w-1)),
				G: uint8(y * 255 / max(1, h-1)),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}
	return b
}
