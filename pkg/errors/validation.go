package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers so labels stay renderable.
const maxNodeIDLength = 256

// ValidateNodeID validates a node identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateRadius rejects negative or non-finite radii.
// Zero is accepted and means "use the default radius".
func ValidateRadius(id string, r float64) error {
	if !IsFinite(r) {
		return New(ErrCodeInvalidInput, "node %q: radius must be finite", id)
	}
	if r < 0 {
		return New(ErrCodeInvalidInput, "node %q: radius must not be negative (got %g)", id, r)
	}
	return nil
}

// ValidateWeight rejects negative or non-finite link weights.
func ValidateWeight(source, target string, w float64) error {
	if !IsFinite(w) {
		return New(ErrCodeInvalidInput, "link %s→%s: value must be finite", source, target)
	}
	if w < 0 {
		return New(ErrCodeInvalidInput, "link %s→%s: value must not be negative (got %g)", source, target, w)
	}
	return nil
}

// ValidateDimensions validates a viewport size.
func ValidateDimensions(width, height float64) error {
	if !IsFinite(width) || !IsFinite(height) {
		return New(ErrCodeInvalidInput, "viewport dimensions must be finite")
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport dimensions must be positive (got %gx%g)", width, height)
	}
	return nil
}

// ValidateCoordinate rejects NaN and infinite coordinates, e.g. pin targets.
func ValidateCoordinate(x, y float64) error {
	if !IsFinite(x) || !IsFinite(y) {
		return New(ErrCodeInvalidInput, "coordinates must be finite (got %g, %g)", x, y)
	}
	return nil
}

// ValidateFormat checks a format name against a set of supported formats.
func ValidateFormat(format string, valid map[string]bool) error {
	if valid[strings.ToLower(format)] {
		return nil
	}
	return New(ErrCodeInvalidFormat, "unsupported format %q", format)
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
