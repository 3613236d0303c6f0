package utils

// Contains reports whether item is in slice.
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Filter returns the items for which keep is true, in order.
func Filter[T any](items []T, keep func(T) bool) []T {
	var kept []T
	for _, item := range items {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	return kept
}

// ArgMax returns the first item with the highest score.
func ArgMax[T any](items []T, score func(T) float64) T {
	if len(items) == 0 {
		panic("ArgMax of an empty slice")
	}
	best, bestScore := items[0], score(items[0])
	for _, item := range items[1:] {
		if s := score(item); s > bestScore {
			best, bestScore = item, s
		}
	}
	return best
}
