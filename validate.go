package quotefed

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// CheckQuote applies the content-quality heuristics to a candidate and
// returns nil when it passes, or a reason wrapping ErrRejected when it
// doesn't. Lengths and ratios are computed over characters, not bytes.
// Thresholds come from the live Config at call time.
func (c *Config) CheckQuote(candidate string) error {
	if candidate == "" {
		return fmt.Errorf("%w: empty candidate", ErrRejected)
	}

	minLength, maxLength, numericLimit := c.snapshot()
	length := utf8.RuneCountInString(candidate)

	if length < minLength {
		return fmt.Errorf("%w: too short (%d < %d)", ErrRejected, length, minLength)
	}
	if length > maxLength {
		return fmt.Errorf("%w: too long (%d > %d)", ErrRejected, length, maxLength)
	}

	// Filters out candidates that are mostly dates or statistics.
	digits := 0
	for _, r := range candidate {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if ratio := float64(digits) / float64(length); ratio > numericLimit {
		return fmt.Errorf("%w: digit ratio %.2f exceeds %.2f", ErrRejected, ratio, numericLimit)
	}

	return nil
}

// Validate reports whether a candidate passes the content-quality checks.
func (c *Config) Validate(candidate string) bool {
	return c.CheckQuote(candidate) == nil
}
