package validate

import "strings"

// similarity returns a ratio in [0,1] measuring how alike two strings are:
// 2*M/T, where M is the total length of matching blocks and T the combined
// length. Comparison is case-insensitive and whitespace-trimmed, so
// "ACME Corp" and " acme corp " compare equal.
func similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1.0
	}
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := matchingLength([]byte(a), []byte(b))
	return 2.0 * float64(matched) / float64(total)
}

// matchingLength sums the lengths of the matching blocks found by
// recursively taking the longest common substring and matching what
// remains on either side of it.
func matchingLength(a, b []byte) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingLength(a[:ai], b[:bi]) +
		matchingLength(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest matching block between a and b, preferring
// the earliest occurrence in a, then in b.
func longestMatch(a, b []byte) (bestA, bestB, bestSize int) {
	// b2j: positions of each byte in b.
	b2j := make(map[byte][]int, len(b))
	for j, c := range b {
		b2j[c] = append(b2j[c], j)
	}
	// j2len[j] = length of longest match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := range a {
		next := make(map[int]int, len(j2len))
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return bestA, bestB, bestSize
}
