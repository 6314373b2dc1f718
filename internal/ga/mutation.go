package ga

import (
	"math/rand"
)

// SwapPair is a pair of positions exchanged by mutation. Both may be equal.
type SwapPair [2]int

// MutateRandom applies n swaps at distinct random position pairs in-place
func (t *Tour) MutateRandom(n int, rng *rand.Rand) {
	t.Swap(pickSwapPairs(t.Len(), n, rng))
}

// Swap exchanges the nodes of each pair in order. Later pairs may move
// nodes placed by earlier ones.
func (t *Tour) Swap(pairs []SwapPair) {
	for _, p := range pairs {
		t.nodes[p[0]], t.nodes[p[1]] = t.nodes[p[1]], t.nodes[p[0]]
	}
}

// pickSwapPairs draws n distinct pairs with both positions uniform in
// [0, size). A pair drawn twice is redrawn; i == j is kept.
func pickSwapPairs(size, n int, rng *rand.Rand) []SwapPair {
	if size == 0 || n <= 0 {
		return nil
	}
	if n > size*size {
		n = size * size
	}

	pairs := make([]SwapPair, 0, n)
	seen := make(map[SwapPair]struct{}, n)
	for len(pairs) < n {
		pair := SwapPair{rng.Intn(size), rng.Intn(size)}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}
