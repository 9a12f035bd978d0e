package errors

import (
	"strings"
	"unicode"
)

// MaxDimension bounds generated image sizes. A 16384×16384 NRGBA buffer is
// already a gigabyte of pixels.
const MaxDimension = 16384

// ValidateEffectRange validates a half-open [min, max) range of effect counts
// used for random runs. Both bounds must be positive and max must exceed min.
func ValidateEffectRange(min, max int) error {
	if min < 1 {
		return New(ErrCodeInvalidInput, "effect range minimum must be at least 1 (got %d)", min)
	}
	if max <= min {
		return New(ErrCodeInvalidInput, "effect range maximum must be greater than minimum (got [%d, %d))", min, max)
	}
	return nil
}

// ValidateDimensions validates the size of an image to be generated.
func ValidateDimensions(width, height int) error {
	if width < 1 || height < 1 {
		return New(ErrCodeInvalidInput, "image dimensions must be positive (got %dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidInput, "image dimensions too large (max %d per side, got %dx%d)", MaxDimension, width, height)
	}
	return nil
}

// ValidateOutputPath validates a file path the engine is asked to write.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must name a file, not end in a separator
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidInput, "output path must name a file: %q", path)
	}

	return nil
}
