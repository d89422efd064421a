package candidate

import (
	"iter"
	"math/big"
)

// bruteForce enumerates every string of each length from minLen to maxLen in odometer order:
// charset order defines digit order and the leftmost position varies slowest.
// The offset is decoded straight into odometer digits, so resuming never replays skipped words.
func bruteForce(charset []rune, minLen, maxLen int, offset int64) iter.Seq[string] {
	return func(yield func(string) bool) {
		base := int64(len(charset))
		remaining := big.NewInt(offset)

		for length := minLen; length <= maxLen; length++ {
			count := new(big.Int).Exp(big.NewInt(base), big.NewInt(int64(length)), nil)
			if remaining.Cmp(count) >= 0 {
				remaining.Sub(remaining, count)

				continue
			}

			digits := decodeDigits(remaining.Int64(), base, length)
			remaining.SetInt64(0)

			if !odometer(charset, digits, yield) {
				return
			}
		}
	}
}

// decodeDigits converts an index within a single length into base-|charset| digits.
func decodeDigits(index, base int64, length int) []int64 {
	digits := make([]int64, length)
	for i := length - 1; i >= 0 && index > 0; i-- {
		digits[i] = index % base
		index /= base
	}

	return digits
}

// odometer yields words starting at digits until the length wraps around.
// It returns false when the consumer stopped early.
func odometer(charset []rune, digits []int64, yield func(string) bool) bool {
	base := int64(len(charset))
	buf := make([]rune, len(digits))

	for {
		for i, d := range digits {
			buf[i] = charset[d]
		}

		if !yield(string(buf)) {
			return false
		}

		i := len(digits) - 1
		for ; i >= 0; i-- {
			digits[i]++
			if digits[i] < base {
				break
			}
			digits[i] = 0
		}

		if i < 0 {
			return true
		}
	}
}
