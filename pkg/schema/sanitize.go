package schema

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides the default limit.
	EnvMaxInputSize = "CONSULT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize cleans raw operator input before it is parsed into field values.
// It rejects input longer than limit bytes (a non-positive limit uses
// MaxInputSize), rejects invalid UTF-8 and strips control characters other
// than newline, tab and carriage return.
func Sanitize(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = MaxInputSize()
	}
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to strip.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// SanitizeValues applies Sanitize to every string value, including list elements.
func SanitizeValues(values map[string]any, limit int) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch val := v.(type) {
		case string:
			s, err := Sanitize(val, limit)
			if err != nil {
				return nil, &FieldError{Field: k, Reason: err.Error()}
			}
			out[k] = s
		case []any:
			list := make([]any, len(val))
			for i, item := range val {
				if s, ok := item.(string); ok {
					clean, err := Sanitize(s, limit)
					if err != nil {
						return nil, &FieldError{Field: k, Reason: err.Error()}
					}
					item = clean
				}
				list[i] = item
			}
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out, nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxInputSize returns the limit from EnvMaxInputSize, or DefaultMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
