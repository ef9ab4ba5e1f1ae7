package brackets

// The draw shuffle is deliberately a tiny linear congruential generator over
// a string hash rather than a real PRNG: redrawing a tournament with the
// same seed reproduces the exact permutation, which keeps executed draws
// auditable.

const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// SeedHash reduces a seed string to the LCG's starting state.
func SeedHash(seed string) int64 {
	var h int32
	for _, c := range seed {
		h = h*31 + c
	}
	if h < 0 {
		h = -h
	}
	return int64(h)
}

// SeededShuffle returns a Fisher-Yates permutation of ids driven by the
// seed. The input slice is not modified; equal seeds yield equal output.
func SeededShuffle(ids []int, seed string) []int {
	out := make([]int, len(ids))
	copy(out, ids)

	h := SeedHash(seed)
	for i := len(out) - 1; i > 0; i-- {
		h = (h*lcgMultiplier + lcgIncrement) % lcgModulus
		j := int(h * int64(i+1) / lcgModulus)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
