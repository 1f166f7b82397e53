package moremath

import "math/rand"

// Shuffle returns the ints 0..n-1 in an order drawn from rng; the same rng
// state always yields the same order.
func Shuffle(rng *rand.Rand, n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}
