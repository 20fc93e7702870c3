package tag

import "sort"

// dedupFragments collapses mate groups that differ only by sequencing error
// into a shared template group. Mate sequences containing an ambiguous base
// are dropped first. The remaining keys are scanned in ascending order with
// a greedy anchor/offset walk: a group within Hamming distance readLen/4 of
// the anchor merges its support into the anchor; the first group out of
// range becomes the next anchor. Genuinely distinct fragments are spaced
// further apart in sorted order and survive untouched. The surviving groups
// are returned ascending by sequence.
func dedupFragments(mates map[string]int, readLen int) []MateCount {
	keys := make([]string, 0, len(mates))
	for k := range mates {
		if !ambiguousMate(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	counts := make([]int, len(keys))
	for i, k := range keys {
		counts[i] = mates[k]
	}
	merged := make([]bool, len(keys))
	limit := float64(readLen) / 4
	i, j := 0, 1
	for i+j < len(keys) {
		if float64(hammingDistance(keys[i], keys[i+j])) < limit {
			counts[i] += counts[i+j]
			merged[i+j] = true
			j++
		} else {
			i += j
			j = 1
		}
	}
	out := make([]MateCount, 0, len(keys))
	for idx, k := range keys {
		if !merged[idx] {
			out = append(out, MateCount{Seq: k, Count: counts[idx]})
		}
	}
	return out
}

// ambiguousMate reports whether the mate sequence contains a base outside
// ACGT. The empty single-end key is never ambiguous.
func ambiguousMate(seq string) bool {
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return true
		}
	}
	return false
}

// hammingDistance counts disagreeing positions. A length difference counts
// as disagreement over the overhang, so fragments of different lengths only
// merge when the shared prefix is near-identical and the overhang is short.
func hammingDistance(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	d := len(b) - len(a)
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
