package batch

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/random"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultVariationCount is the number of variations per batch.
	DefaultVariationCount = 10

	// DefaultVariationMin and DefaultVariationMax bound the effects per
	// variation run, half-open.
	DefaultVariationMin = 3
	DefaultVariationMax = 10

	// DefaultFolderMin and DefaultFolderMax bound the effects per file in a
	// folder batch, half-open.
	DefaultFolderMin = 2
	DefaultFolderMax = 5

	// CollageColumns is the fixed width of the collage grid.
	CollageColumns = 3

	// MaxCollageTiles is the number of variations placed on the collage.
	// The canvas holds a 3×3 grid, so the tenth tile lands below it and is
	// clipped.
	MaxCollageTiles = 10

	// CollageFile is the collage file name inside the variations directory.
	CollageFile = "Collage.png"

	// FolderDirPrefix and FolderDirLayout name the folder batch output
	// directory, e.g. "Glitched 2024-03-09 14-05-59".
	FolderDirPrefix = "Glitched "
	FolderDirLayout = "2006-01-02 15-04-05"
)

// CollagePolicy decides how a variation whose size differs from the source
// is placed in its collage cell.
type CollagePolicy string

const (
	// CollageLetterbox scales the tile to fit its cell, keeping the aspect
	// ratio, and centers it.
	CollageLetterbox CollagePolicy = "letterbox"
	// CollageClip draws the tile at the cell origin and crops it to the cell.
	CollageClip CollagePolicy = "clip"
	// CollageReject refuses to build the collage (DIMENSION_MISMATCH).
	CollageReject CollagePolicy = "reject"
)

// DefaultCollagePolicy is the policy used when none is set.
const DefaultCollagePolicy = CollageLetterbox

// ValidCollagePolicies is the set of supported policies.
var ValidCollagePolicies = map[CollagePolicy]bool{
	CollageLetterbox: true,
	CollageClip:      true,
	CollageReject:    true,
}

// ParseCollagePolicy parses a policy name (case-insensitive).
func ParseCollagePolicy(s string) (CollagePolicy, error) {
	p := CollagePolicy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultCollagePolicy, nil
	}
	if !ValidCollagePolicies[p] {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid collage policy %q (use letterbox, clip or reject)", s)
	}
	return p, nil
}

// EffectRange is a half-open [Min, Max) range of effects per run.
type EffectRange struct {
	Min int
	Max int
}

// Validate checks the range bounds.
func (r EffectRange) Validate() error {
	return errors.ValidateEffectRange(r.Min, r.Max)
}

// Draw picks a count from the range.
func (r EffectRange) Draw(rng *random.Source) int {
	return rng.Range(r.Min, r.Max)
}

// String formats the range as "[min, max)".
func (r EffectRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}

func (r *EffectRange) setDefaults(min, max int) {
	if r.Min == 0 && r.Max == 0 {
		r.Min, r.Max = min, max
	}
}

// Progress is called before each batch item with a zero-based index.
type Progress func(index, total int)

// VariationOptions configures GenerateVariations.
type VariationOptions struct {
	Count     int           // number of variations; DefaultVariationCount if zero
	Range     EffectRange   // effects per run; [3, 10) if zero
	OutputDir string        // created if missing; a new temp dir if empty
	Collage   CollagePolicy // DefaultCollagePolicy if empty
	NoCollage bool          // skip writing Collage.png
	Progress  Progress
	Logger    *log.Logger
}

// SetDefaults fills zero values.
func (o *VariationOptions) SetDefaults() {
	if o.Count == 0 {
		o.Count = DefaultVariationCount
	}
	o.Range.setDefaults(DefaultVariationMin, DefaultVariationMax)
	if o.Collage == "" {
		o.Collage = DefaultCollagePolicy
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate sets defaults and checks the options.
func (o *VariationOptions) Validate() error {
	o.SetDefaults()
	if o.Count < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "variation count must be positive (got %d)", o.Count)
	}
	if err := o.Range.Validate(); err != nil {
		return err
	}
	if !ValidCollagePolicies[o.Collage] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid collage policy %q", o.Collage)
	}
	return nil
}

// FolderOptions configures ProcessFolder.
type FolderOptions struct {
	Range     EffectRange // effects per file; [2, 5) if zero
	OutputDir string      // "<dir of first input>/Glitched <Started>" if empty
	Started   time.Time   // names the default output dir; now if zero
	Progress  Progress
	Logger    *log.Logger
}

// SetDefaults fills zero values.
func (o *FolderOptions) SetDefaults() {
	o.Range.setDefaults(DefaultFolderMin, DefaultFolderMax)
	if o.Started.IsZero() {
		o.Started = time.Now()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate sets defaults and checks the options.
func (o *FolderOptions) Validate() error {
	o.SetDefaults()
	return o.Range.Validate()
}

// FolderDirName returns the default output directory name for a batch
// started at t.
func FolderDirName(t time.Time) string {
	return FolderDirPrefix + t.Format(FolderDirLayout)
}
