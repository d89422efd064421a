package candidate

import (
	"iter"
	"math/big"
)

// Generate returns the lazy candidate sequence for cfg, skipping the first offset candidates.
// The sequence never blocks and can be restarted at any offset with identical results.
func Generate(cfg Config, offset int64) (iter.Seq[string], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if offset < 0 {
		return nil, ErrNegativeOffset
	}

	switch cfg.Strategy {
	case StrategyDictionary:
		return dictionary(Normalize(cfg.Words), offset), nil
	case StrategyBruteForce:
		return bruteForce(cfg.charset(), cfg.MinLength, cfg.MaxLength, offset), nil
	default:
		words := Normalize(cfg.Words)
		dictLen := int64(len(words))

		return func(yield func(string) bool) {
			bruteOffset := offset - dictLen
			if offset < dictLen {
				for word := range dictionary(words, offset) {
					if !yield(word) {
						return
					}
				}
				bruteOffset = 0
			}

			for word := range bruteForce(cfg.charset(), cfg.MinLength, cfg.MaxLength, bruteOffset) {
				if !yield(word) {
					return
				}
			}
		}, nil
	}
}

// EstimateTotal returns the exact number of candidates cfg produces.
// Brute-force totals grow as |charset|^length, so the count is kept in arbitrary precision.
func EstimateTotal(cfg Config) *big.Int {
	total := new(big.Int)

	if cfg.Strategy.UsesDictionary() {
		total.Add(total, big.NewInt(int64(len(Normalize(cfg.Words)))))
	}

	if cfg.Strategy.UsesBruteForce() {
		base := big.NewInt(int64(len(cfg.charset())))
		for length := cfg.MinLength; length <= cfg.MaxLength && length > 0; length++ {
			total.Add(total, new(big.Int).Exp(base, big.NewInt(int64(length)), nil))
		}
	}

	return total
}

// TotalInt64 returns the total as an int64, or false when it does not fit and must be
// treated as unknown.
func TotalInt64(cfg Config) (int64, bool) {
	total := EstimateTotal(cfg)
	if !total.IsInt64() {
		return 0, false
	}

	return total.Int64(), true
}

func dictionary(words []string, offset int64) iter.Seq[string] {
	return func(yield func(string) bool) {
		if offset >= int64(len(words)) {
			return
		}

		for _, word := range words[offset:] {
			if !yield(word) {
				return
			}
		}
	}
}
