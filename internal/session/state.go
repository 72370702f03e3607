// internal/session/state.go
//
// Per-session quiz state: the round in progress and the running score.
//
// Round lifecycle:
//   Idle ──Begin──▶ AwaitingGuess ──Resolve──▶ Resolved ──Begin──▶ AwaitingGuess …
//
//   - Begin may be called from any phase; it replaces whatever round was held.
//   - Resolve consumes the expected word exactly once. Calling it when no
//     round is pending returns ErrNoActiveRound.
//   - Abandon returns to Idle without scoring; Reset also zeroes the score
//     and counters.
//
// The score only ever grows by round.Reward or drops to 0 via Reset.

package session

import (
	"errors"
	"time"

	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/round"
)

// ErrNoActiveRound is returned by Resolve when no guess is awaited.
var ErrNoActiveRound = errors.New("session: no active round")

// Phase is the coarse round state of a session.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseAwaitingGuess Phase = "awaiting_guess"
	PhaseResolved      Phase = "resolved"
)

// State holds everything one player's session remembers.
type State struct {
	ID        string        `json:"id"`
	Phase     Phase         `json:"phase"`
	Expected  string        `json:"-"` // never sent to clients before the guess
	ImagePath string        `json:"imagePath,omitempty"`
	Score     int           `json:"score"`
	Rounds    int           `json:"rounds"`  // resolved rounds since last reset
	Correct   int           `json:"correct"` // correct guesses since last reset
	Last      *round.Result `json:"last,omitempty"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// New returns an Idle state for id.
func New(id string) *State {
	return &State{ID: id, Phase: PhaseIdle, UpdatedAt: time.Now().UTC()}
}

// Begin starts a round for e, discarding any round still held.
func (s *State) Begin(e catalog.WordEntry) {
	s.Phase = PhaseAwaitingGuess
	s.Expected = e.Word
	s.ImagePath = e.ImagePath
	s.Last = nil
	s.touch()
}

// Resolve judges guess against the held word and updates the score.
// It returns the result and the points awarded (0 or round.Reward).
func (s *State) Resolve(guess string) (round.Result, int, error) {
	if s.Phase != PhaseAwaitingGuess {
		return round.Result{}, 0, ErrNoActiveRound
	}
	res := round.CheckGuess(s.Expected, guess)
	awarded := 0
	if res.Correct {
		awarded = round.Reward
		s.Score += awarded
		s.Correct++
	}
	s.Rounds++
	s.Phase = PhaseResolved
	s.Expected = ""
	s.Last = &res
	s.touch()
	return res, awarded, nil
}

// Abandon drops the held round without judging it. Score and counters are
// kept.
func (s *State) Abandon() {
	s.Phase = PhaseIdle
	s.Expected = ""
	s.ImagePath = ""
	s.touch()
}

// Reset zeroes the score and returns to Idle.
func (s *State) Reset() {
	s.Phase = PhaseIdle
	s.Expected = ""
	s.ImagePath = ""
	s.Score = 0
	s.Rounds = 0
	s.Correct = 0
	s.Last = nil
	s.touch()
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	if s.Last != nil {
		last := *s.Last
		c.Last = &last
	}
	return &c
}

func (s *State) touch() { s.UpdatedAt = time.Now().UTC() }
