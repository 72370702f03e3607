// internal/session/sqlite.go
//
// SQLite-backed Store. Rows live in the sessions table created by the
// migrations in internal/database.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/spellquiz/internal/round"
)

// timeLayout is fixed-width so updated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ Store = (*SQLStore)(nil)

// SQLStore persists sessions in SQLite.
type SQLStore struct{ db *sql.DB }

// NewSQLStore wraps an already-migrated database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, id string) (*State, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, phase, expected, image_path, score, rounds, correct,
               last_correct, last_expected, last_guess, updated_at
        FROM sessions WHERE id=?`, id)

	var (
		st      State
		phase   string
		lastOK  sql.NullBool
		lastExp sql.NullString
		lastGs  sql.NullString
		updated string
	)
	err := row.Scan(&st.ID, &phase, &st.Expected, &st.ImagePath, &st.Score, &st.Rounds, &st.Correct,
		&lastOK, &lastExp, &lastGs, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	st.Phase = Phase(phase)
	if lastOK.Valid {
		st.Last = &round.Result{Correct: lastOK.Bool, Expected: lastExp.String, Guess: lastGs.String}
	}
	st.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &st, nil
}

func (s *SQLStore) Save(ctx context.Context, st *State) error {
	if st == nil || st.ID == "" {
		return errors.New("session: missing id")
	}
	var lastOK, lastExp, lastGs any
	if st.Last != nil {
		lastOK, lastExp, lastGs = st.Last.Correct, st.Last.Expected, st.Last.Guess
	}
	updated := st.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions
            (id, phase, expected, image_path, score, rounds, correct,
             last_correct, last_expected, last_guess, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            phase=excluded.phase,
            expected=excluded.expected,
            image_path=excluded.image_path,
            score=excluded.score,
            rounds=excluded.rounds,
            correct=excluded.correct,
            last_correct=excluded.last_correct,
            last_expected=excluded.last_expected,
            last_guess=excluded.last_guess,
            updated_at=excluded.updated_at`,
		st.ID, string(st.Phase), st.Expected, st.ImagePath, st.Score, st.Rounds, st.Correct,
		lastOK, lastExp, lastGs, updated.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("session: save %s: %w", st.ID, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id); err != nil {
		return fmt.Errorf("session: delete %s: %w", id, err)
	}
	return nil
}

// Prune deletes sessions not updated since before and reports how many went.
func (s *SQLStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`,
		before.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("session: prune: %w", err)
	}
	return res.RowsAffected()
}
