// Package sieve enumerates primes with the sieve of Sundaram.
package sieve

// PrimesUpTo returns every prime p <= limit in ascending order. Limits below
// 2 produce an empty, non-nil slice.
//
// Odd numbers 2i+1 are represented by their index i in [1, n] where
// n = (limit-1)/2. Every index of the form i + j + 2ij with 1 <= i <= j is
// composite; the remaining indices map back to the odd primes.
func PrimesUpTo(limit int) []int {
	if limit < 2 {
		return []int{}
	}

	n := (limit - 1) / 2
	composite := make([]bool, n+1)

	for i := 1; i+i+2*i*i <= n; i++ {
		step := 2*i + 1
		for k := i + i + 2*i*i; k <= n; k += step {
			composite[k] = true
		}
	}

	primes := make([]int, 0, estimate(limit))
	primes = append(primes, 2)
	for i := 1; i <= n; i++ {
		if !composite[i] {
			primes = append(primes, 2*i+1)
		}
	}
	return primes
}

// Count is PrimesUpTo(limit) without keeping the primes.
func Count(limit int) int {
	return len(PrimesUpTo(limit))
}

// estimate over-approximates pi(limit) closely enough to avoid regrowth for
// the limits the service accepts.
func estimate(limit int) int {
	switch {
	case limit < 100:
		return 25
	case limit < 100_000:
		return limit / 5
	default:
		return limit / 10
	}
}
