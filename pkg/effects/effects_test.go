package effects

import (
	"fmt"
	"testing"

	"github.com/matzehuels/glitchgen/pkg/random"
)

func TestEveryEffectProducesValidBuffer(t *testing.T) {
	sizes := []struct{ w, h int }{{64, 48}, {1, 1}, {3, 17}}
	for _, e := range Default().All() {
		for _, sz := range sizes {
			t.Run(fmt.Sprintf("%s/%dx%d", e.ID(), sz.w, sz.h), func(t *testing.T) {
				out := e.Transform(testImage(sz.w, sz.h), random.New(7))
				if out == nil {
					t.Fatal("transform returned nil")
				}
				w, h := out.Size()
				if w < 1 || h < 1 {
					t.Fatalf("result size %dx%d", w, h)
				}
				if e.Name == "Rotate" {
					if !(w == sz.w && h == sz.h) && !(w == sz.h && h == sz.w) {
						t.Errorf("Rotate size %dx%d from %dx%d", w, h, sz.w, sz.h)
					}
					return
				}
				if w != sz.w || h != sz.h {
					t.Errorf("size = %dx%d, want %dx%d", w, h, sz.w, sz.h)
				}
			})
		}
	}
}

func TestEffectsAreDeterministicPerSeed(t *testing.T) {
	for _, e := range Default().All() {
		t.Run(e.ID(), func(t *testing.T) {
			a := e.Transform(testImage(40, 30), random.New(123))
			b := e.Transform(testImage(40, 30), random.New(123))
			if !a.Equal(b) {
				t.Error("same seed and input produced different pixels")
			}
		})
	}
}

func TestGeneratorsIgnoreInputPixels(t *testing.T) {
	for _, e := range Default().Generators() {
		t.Run(e.ID(), func(t *testing.T) {
			a := e.Transform(testImage(32, 32), random.New(5))
			blank := testImage(32, 32)
			for i := range blank.Image().Pix {
				blank.Image().Pix[i] = 0
			}
			b := e.Transform(blank, random.New(5))
			if !a.Equal(b) {
				t.Error("generator output depends on input pixels")
			}
		})
	}
}

func TestInvertTwiceIsIdentity(t *testing.T) {
	inv, _ := Default().Lookup("Invert")
	orig := testImage(16, 16)
	got := inv.Transform(inv.Transform(testImage(16, 16), nil), nil)
	if !got.Equal(orig) {
		t.Error("double invert changed pixels")
	}
}

func TestBitCrushClearsLowBits(t *testing.T) {
	e, _ := Default().Lookup("Bit Crush")
	out := e.Transform(testImage(20, 20), random.New(3))
	pix := out.Image().Pix
	for i := 0; i < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			if pix[i+c]&0x1f != 0 {
				t.Fatalf("byte %d = %08b still has low bits", i+c, pix[i+c])
			}
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ x, n, want int }{
		{0, 5, 0}, {4, 5, 4}, {5, 5, 0}, {-1, 5, 4}, {-11, 5, 4}, {12, 5, 2},
	}
	for _, tt := range tests {
		if got := wrap(tt.x, tt.n); got != tt.want {
			t.Errorf("wrap(%d, %d) = %d, want %d", tt.x, tt.n, got, tt.want)
		}
	}
}
