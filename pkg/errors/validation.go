package errors

import (
	"strconv"
	"strings"
)

// MaxDimension is the largest accepted canvas width or height.
const MaxDimension = 10000

// ValidateDimensions checks a requested canvas size.
// Zero is accepted and yields an empty canvas.
func ValidateDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidDimensions, "dimensions cannot be negative (got %dx%d)", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return New(ErrCodeInvalidDimensions, "dimensions too large (max %d, got %dx%d)", MaxDimension, width, height)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed []string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "unknown format %q (valid: %s)", format, strings.Join(allowed, ", "))
}

// ParseSeed parses a decimal or 0x-prefixed hexadecimal seed.
func ParseSeed(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidSeed, "seed cannot be empty")
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidSeed, err, "invalid seed %q", s)
	}
	return v, nil
}

// ValidateScale checks a preview scale factor.
func ValidateScale(scale float64) error {
	if scale <= 0 || scale > 4 {
		return New(ErrCodeInvalidInput, "scale must be in (0, 4], got %v", scale)
	}
	return nil
}

// ValidateMongoURI checks that uri uses a MongoDB connection scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb:// or mongodb+srv:// scheme")
	}
	return nil
}
