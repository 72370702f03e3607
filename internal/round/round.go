// internal/round/round.go
//
// Round selection and guess adjudication.
// Responsibilities:
//   - Pick one catalog entry per round, uniformly at random (repeats allowed).
//   - Judge a typed guess against the expected word.
//
// Notes:
//   - Normalization is trim + lowercase on the guess, lowercase on the word.
//     Nothing fancier: no edit distance, no Unicode folding.
//   - Scoring is the caller's job; Reward is the amount per correct answer.
package round

import (
	"strings"

	"github.com/robalobadob/spellquiz/internal/catalog"
)

// Reward is the number of points a correct guess is worth.
const Reward = 10

// Result is the outcome of a single guess.
type Result struct {
	Correct  bool   `json:"isCorrect"`
	Expected string `json:"correctWord"` // as stored, original case
	Guess    string `json:"userGuess"`   // normalized
}

// Selector picks rounds from a catalog.
type Selector struct {
	src Source
}

// NewSelector returns a Selector drawing from src.
// A nil src means CryptoSource.
func NewSelector(src Source) *Selector {
	if src == nil {
		src = CryptoSource{}
	}
	return &Selector{src: src}
}

// Pick returns a random entry of c. The catalog is not modified.
func (s *Selector) Pick(c *catalog.Catalog) (catalog.WordEntry, error) {
	n := c.Len()
	if n == 0 {
		return catalog.WordEntry{}, catalog.ErrEmptyCatalog
	}
	return c.Entry(s.src.IntN(n)), nil
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckGuess compares raw against expected. It never fails: any input,
// including an empty guess, yields a well-defined Result.
func CheckGuess(expected, raw string) Result {
	guess := Normalize(raw)
	return Result{
		Correct:  guess == strings.ToLower(expected),
		Expected: expected,
		Guess:    guess,
	}
}
