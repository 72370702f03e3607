// Package quiz ties the catalog, the round selector and a session store
// together into the operations a host (web or desktop) exposes.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/round"
	"github.com/robalobadob/spellquiz/internal/session"
)

// Round is what a host needs to show a new round.
type Round struct {
	ImagePath string `json:"imagePath"`
	Score     int    `json:"score"`
}

// Outcome is what a host needs to show the result of a guess.
type Outcome struct {
	round.Result
	Awarded int `json:"awarded"`
	Score   int `json:"score"`
}

// Service runs quiz rounds for any number of sessions.
type Service struct {
	catalog  *catalog.Catalog
	selector *round.Selector
	store    session.Store

	mu sync.Mutex // serializes read-modify-write of session state
}

// New builds a Service. cat must be non-empty.
func New(cat *catalog.Catalog, sel *round.Selector, store session.Store) (*Service, error) {
	if cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if sel == nil {
		sel = round.NewSelector(nil)
	}
	return &Service{catalog: cat, selector: sel, store: store}, nil
}

// Catalog returns the catalog rounds are drawn from.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// State returns the session's state, or a fresh Idle one for unknown ids.
func (s *Service) State(ctx context.Context, sessionID string) (*session.State, error) {
	st, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return session.New(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// NewRound picks an entry and makes it the session's pending round.
func (s *Service) NewRound(ctx context.Context, sessionID string) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.State(ctx, sessionID)
	if err != nil {
		return Round{}, err
	}
	e, err := s.selector.Pick(s.catalog)
	if err != nil {
		return Round{}, err
	}
	st.Begin(e)
	if err := s.store.Save(ctx, st); err != nil {
		return Round{}, fmt.Errorf("quiz: save round: %w", err)
	}
	return Round{ImagePath: e.ImagePath, Score: st.Score}, nil
}

// Submit judges guess against the session's pending round.
// It returns session.ErrNoActiveRound if no round is pending.
func (s *Service) Submit(ctx context.Context, sessionID, guess string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.State(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	res, awarded, err := st.Resolve(guess)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.store.Save(ctx, st); err != nil {
		return Outcome{}, fmt.Errorf("quiz: save result: %w", err)
	}
	return Outcome{Result: res, Awarded: awarded, Score: st.Score}, nil
}

// Reset zeroes the session's score.
func (s *Service) Reset(ctx context.Context, sessionID string) (*session.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.Reset()
	if err := s.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("quiz: save reset: %w", err)
	}
	return st, nil
}

// End forgets the session entirely. Unknown ids are not an error.
func (s *Service) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("quiz: end session: %w", err)
	}
	return nil
}
