// Package candidate produces the ordered, resumable candidate sequences used by an attack session.
// A sequence is fully determined by its Config, so generating again from a larger offset reproduces
// the tail of the same ordering.
package candidate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"github.com/duke-git/lancet/v2/strutil"
)

// Strategy is the algorithm family used to generate candidates.
type Strategy string

const (
	// StrategyDictionary tries the entries of a password list in order.
	StrategyDictionary Strategy = "dictionary"
	// StrategyBruteForce enumerates every string over a charset within a length range.
	StrategyBruteForce Strategy = "bruteforce"
	// StrategyHybrid tries the full dictionary first, then the brute-force enumeration.
	StrategyHybrid Strategy = "hybrid"
)

var (
	// ErrUnknownStrategy is returned for a strategy name that is not recognized.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrEmptyDictionary is returned when a dictionary-based strategy has no usable entries.
	ErrEmptyDictionary = errors.New("dictionary has no candidates")
	// ErrInvalidLength is returned when the brute-force length range is unusable.
	ErrInvalidLength = errors.New("invalid brute-force length range")
	// ErrEmptyCharset is returned when the brute-force charset is empty.
	ErrEmptyCharset = errors.New("brute-force charset is empty")
	// ErrNegativeOffset is returned when generation is requested from a negative offset.
	ErrNegativeOffset = errors.New("offset must not be negative")
)

// ParseStrategy converts a user supplied name into a Strategy.
// Matching is case-insensitive and accepts "brute-force" as well as "bruteforce".
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dictionary", "dict":
		return StrategyDictionary, nil
	case "bruteforce", "brute-force", "brute":
		return StrategyBruteForce, nil
	case "hybrid":
		return StrategyHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// UsesDictionary reports whether the strategy consumes a password list.
func (s Strategy) UsesDictionary() bool {
	return s == StrategyDictionary || s == StrategyHybrid
}

// UsesBruteForce reports whether the strategy enumerates a charset.
func (s Strategy) UsesBruteForce() bool {
	return s == StrategyBruteForce || s == StrategyHybrid
}

// Config holds everything needed to reproduce a candidate ordering.
// Words is supplied at runtime by the list provider and never persisted; WordlistPath and
// WordlistChecksum identify the list so a resumed session can reload and verify it.
// A dictionary or hybrid session built from inline Words with no WordlistPath can only be
// resumed by the engine that still holds it paused; any other resume fails with
// ErrEmptyDictionary.
type Config struct {
	Strategy         Strategy `json:"strategy"`
	Words            []string `json:"-"`
	WordlistPath     string   `json:"wordlist_path,omitempty"`
	WordlistChecksum string   `json:"wordlist_checksum,omitempty"`
	MinLength        int      `json:"min_length,omitempty"`
	MaxLength        int      `json:"max_length,omitempty"`
	Charset          string   `json:"charset,omitempty"`
}

// Validate checks that the configuration can produce at least one candidate.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyDictionary, StrategyBruteForce, StrategyHybrid:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}

	if c.Strategy.UsesDictionary() && len(Normalize(c.Words)) == 0 {
		return ErrEmptyDictionary
	}

	if c.Strategy.UsesBruteForce() {
		if c.MinLength < 1 || c.MaxLength < c.MinLength {
			return fmt.Errorf("%w: min=%d max=%d", ErrInvalidLength, c.MinLength, c.MaxLength)
		}

		if len(c.charset()) == 0 {
			return ErrEmptyCharset
		}
	}

	return nil
}

// charset returns the brute-force alphabet as an ordered set of runes.
// Repeated characters keep their first position.
func (c Config) charset() []rune {
	return slice.Unique([]rune(c.Charset))
}

// Normalize turns raw list lines into candidates: surrounding whitespace is trimmed,
// blank entries are dropped, and duplicates are kept in their original positions.
func Normalize(lines []string) []string {
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		if strutil.IsBlank(line) {
			continue
		}

		words = append(words, strings.TrimSpace(line))
	}

	return words
}
