package mapping

import (
	"sort"
	"strings"
)

// levenshteinDistance computes the edit distance between two strings,
// using two rolling rows so memory stays O(min(len(a), len(b))).
func levenshteinDistance(a, b string) int {
	aRunes := []rune(a)
	bRunes := []rune(b)
	aLen := len(aRunes)
	bLen := len(bRunes)

	if aLen == 0 {
		return bLen
	}
	if bLen == 0 {
		return aLen
	}
	if aLen > bLen {
		aRunes, bRunes = bRunes, aRunes
		aLen, bLen = bLen, aLen
	}

	prevRow := make([]int, aLen+1)
	currRow := make([]int, aLen+1)
	for i := 0; i <= aLen; i++ {
		prevRow[i] = i
	}

	for j := 1; j <= bLen; j++ {
		currRow[0] = j
		for i := 1; i <= aLen; i++ {
			cost := 1
			if aRunes[i-1] == bRunes[j-1] {
				cost = 0
			}
			currRow[i] = min3(prevRow[i]+1, currRow[i-1]+1, prevRow[i-1]+cost)
		}
		prevRow, currRow = currRow, prevRow
	}
	return prevRow[aLen]
}

// editRatio is 1 - distance/max(len), in [0, 1].
func editRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	aLen := len([]rune(a))
	bLen := len([]rune(b))
	maxLen := aLen
	if bLen > maxLen {
		maxLen = bLen
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// tokenSortRatio compares the underscore-separated tokens of both
// strings in sorted order, so "date_order" and "order_date" score as
// identical.
func tokenSortRatio(a, b string) float64 {
	return editRatio(sortTokens(a), sortTokens(b))
}

func sortTokens(s string) string {
	tokens := strings.Split(s, "_")
	sort.Strings(tokens)
	return strings.Join(tokens, "_")
}

// Similarity scores two normalized headers in [0, 1]. It takes the
// better of plain edit ratio and token-sort ratio, then adds a small
// containment bonus when one string contains the other, capped at 1.0.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	score := editRatio(a, b)
	if ts := tokenSortRatio(a, b); ts > score {
		score = ts
	}
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
