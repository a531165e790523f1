package oracle

import (
	"math/rand"
	"strings"
)

// ScrambleWord shuffles the letters of a word for display, guaranteeing the
// result differs from the original when that is possible. Words whose letters
// are all identical cannot differ and are returned reversed (i.e. unchanged).
func ScrambleWord(word string, r *rand.Rand) string {
	runes := []rune(word)
	if len(runes) < 2 || allSame(runes) {
		return reverse(runes)
	}

	for attempt := 0; attempt < 10; attempt++ {
		shuffled := make([]rune, len(runes))
		copy(shuffled, runes)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if !strings.EqualFold(string(shuffled), word) {
			return string(shuffled)
		}
	}

	// Shuffling kept producing the original word; reversing always differs
	// here since the letters are not all identical and length >= 2.
	if rev := reverse(runes); !strings.EqualFold(rev, word) {
		return rev
	}
	// Palindrome: swap the first two distinct letters.
	swapped := make([]rune, len(runes))
	copy(swapped, runes)
	for i := 1; i < len(swapped); i++ {
		if swapped[i] != swapped[0] {
			swapped[0], swapped[i] = swapped[i], swapped[0]
			break
		}
	}
	return string(swapped)
}

func allSame(runes []rune) bool {
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

func reverse(runes []rune) string {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[len(runes)-1-i] = r
	}
	return string(out)
}
