package crossword

import (
	"math/rand/v2"
	"strings"
)

// decoyAlphabet is the pool decoy letters are drawn from.
const decoyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZÇƏĞŞÜ"

// minPoolSize is the smallest helper pool offered for any word.
const minPoolSize = 12

// Bank holds the shuffled helper-letter pools offered for each word and
// tracks which letters the player has consumed. Pools mix the word's own
// letters (with multiplicity) with random decoys, padded to minPoolSize.
type Bank struct {
	letters map[int][]string
	used    map[int][]string
}

// NewBank builds a fresh bank for the given words. Shuffling and decoy
// selection use the supplied source, so a fixed seed reproduces the bank.
func NewBank(words []Word, rng *rand.Rand) *Bank {
	alphabet := []rune(decoyAlphabet)

	b := &Bank{
		letters: make(map[int][]string, len(words)),
		used:    make(map[int][]string, len(words)),
	}

	for _, w := range words {
		answer := []rune(strings.ToUpper(w.Answer))

		pool := make([]string, 0, max(len(answer), minPoolSize))
		for _, r := range answer {
			pool = append(pool, string(r))
		}
		for i := len(answer); i < minPoolSize; i++ {
			pool = append(pool, string(alphabet[rng.IntN(len(alphabet))]))
		}

		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})

		b.letters[w.Number] = pool
	}

	return b
}

// Letters returns the helper pool for a word, in display order.
func (b *Bank) Letters(number int) []string {
	return b.letters[number]
}

// Used returns the letters consumed so far for a word, in consumption order.
func (b *Bank) Used(number int) []string {
	return b.used[number]
}

// IsUsed reports whether the pool entry at index i for the given word is
// currently consumed. Consumption is FIFO by letter value, not by index:
// the entry counts as used once the number of consumed instances of its
// letter exceeds the number of earlier pool entries holding the same letter.
func (b *Bank) IsUsed(number, i int) bool {
	pool := b.letters[number]
	if i < 0 || i >= len(pool) {
		return false
	}
	letter := pool[i]

	before := 0
	for _, l := range pool[:i] {
		if l == letter {
			before++
		}
	}

	consumed := 0
	for _, l := range b.used[number] {
		if l == letter {
			consumed++
		}
	}

	return consumed > before
}

// use marks one instance of letter as consumed for the word.
func (b *Bank) use(number int, letter string) {
	b.used[number] = append(b.used[number], letter)
}

// ret returns one instance of letter to the unused pool for the word.
func (b *Bank) ret(number int, letter string) {
	consumed := b.used[number]
	for i, l := range consumed {
		if l == letter {
			b.used[number] = append(consumed[:i], consumed[i+1:]...)
			return
		}
	}
}

// reset clears all consumption, leaving the pools intact.
func (b *Bank) reset() {
	b.used = make(map[int][]string, len(b.letters))
}
