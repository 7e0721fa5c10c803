// Package experiment builds and executes the evaluation grid: leave-one-out
// combinations, conversation assembly, single-experiment execution, and the
// sequential driver loop.
package experiment

// Combination pairs the few-shot example indices with the single held-out
// target index.
type Combination struct {
	Examples []int
	Target   int
}

// LeaveOneOut enumerates every (n-1)-element subset of [0, n) in
// lexicographic order, pairing each with its complement singleton as the
// prediction target. For n=4 this yields the 4 standard 3-of-4 splits.
//
// The complement extraction assumes subsets of size n-1; it is not guarded
// for other sizes.
func LeaveOneOut(n int) []Combination {
	subsets := combinations(n, n-1)
	out := make([]Combination, 0, len(subsets))
	for _, s := range subsets {
		out = append(out, Combination{Examples: s, Target: complement(n, s)})
	}
	return out
}

// combinations returns all k-element subsets of [0, n) in lexicographic order.
func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var out [][]int
	for {
		out = append(out, append([]int(nil), idx...))

		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

// complement returns the first index of [0, n) not present in subset.
func complement(n int, subset []int) int {
	member := make([]bool, n)
	for _, i := range subset {
		member[i] = true
	}
	for i := 0; i < n; i++ {
		if !member[i] {
			return i
		}
	}
	return -1
}
