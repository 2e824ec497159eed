// Package guard validates untrusted input before it reaches the scope
// collector: attribute-name overrides and bounded reads of markup.
package guard

import (
	"errors"
	"fmt"
	"io"
)

// MaxInput is the default cap for markup reads (16 MiB).
const MaxInput int64 = 16 << 20

// maxNameLen bounds attribute names.
const maxNameLen = 256

var (
	// ErrInvalidName is returned for attribute names the collector must not use.
	ErrInvalidName = errors.New("guard: invalid attribute name")

	// ErrTooLarge is returned when input exceeds its read limit.
	ErrTooLarge = errors.New("guard: input too large")
)

// ValidateAttrName checks that s can name a reference or scope attribute: an
// ASCII letter followed by letters, digits, '-', '_', '.' or ':'.
func ValidateAttrName(s string) error {
	if s == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if len(s) > maxNameLen {
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, maxNameLen)
	}
	for i, r := range s {
		if !isLetter(r) && (i == 0 || !isNameChar(r)) {
			return fmt.Errorf("%w: invalid character %q in %q", ErrInvalidName, r, s)
		}
	}
	return nil
}

// LimitedReadAll reads at most maxBytes from r.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameChar(r rune) bool {
	return (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.' || r == ':'
}
