package optim

import "math/rand"

// Source is the random strategy behind the per-epoch shuffles.
// *rand.Rand satisfies it; tests inject fixed sources for reproducible runs.
type Source interface {
	// Intn returns a uniform value in [0, n).
	Intn(n int) int
}

// NewSource returns a Source seeded with seed. A negative seed selects a
// random one.
func NewSource(seed int64) Source {
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // Shuffling order is not security-critical
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // Deterministic seed for reproducibility
}

// Shuffle returns a uniformly random permutation of indices (Fisher–Yates).
// The input is left untouched. A nil src draws from a randomly seeded source.
func Shuffle(indices []int, src Source) []int {
	if src == nil {
		src = NewSource(-1)
	}
	out := make([]int, len(indices))
	copy(out, indices)
	shuffle(out, src)
	return out
}

// Permutation returns a random permutation of 0..m-1.
func Permutation(m int, src Source) []int {
	if src == nil {
		src = NewSource(-1)
	}
	p := sequence(m)
	shuffle(p, src)
	return p
}

func shuffle(s []int, src Source) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
