package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/spellquiz/internal/database"
)

func newSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLStore(db)
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLStore(t)) })
}

func TestStoreGetMissing(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestStoreRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		st := New("abc")
		st.Begin(appel)
		_, _, _ = st.Resolve("Appel")
		st.Begin(appel)

		if err := s.Save(ctx, st); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Get(ctx, "abc")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Phase != PhaseAwaitingGuess || got.Expected != "Appel" || got.Score != 10 ||
			got.Rounds != 1 || got.Correct != 1 || got.ImagePath != "Appel.PNG" {
			t.Fatalf("Get = %+v", got)
		}
		if got.Last != nil {
			t.Errorf("Last = %+v, want nil after Begin", got.Last)
		}

		// Resolve and save again to exercise the upsert path.
		if _, _, err := got.Resolve("peer"); err != nil {
			t.Fatal(err)
		}
		if err := s.Save(ctx, got); err != nil {
			t.Fatalf("Save (update): %v", err)
		}
		again, _ := s.Get(ctx, "abc")
		if again.Last == nil || again.Last.Correct || again.Last.Guess != "peer" || again.Last.Expected != "Appel" {
			t.Fatalf("Last = %+v", again.Last)
		}
	})
}

func TestStoreIsolatesSessions(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		a, b := New("a"), New("b")
		a.Begin(appel)
		_, _, _ = a.Resolve("appel")
		_ = s.Save(ctx, a)
		_ = s.Save(ctx, b)

		got, _ := s.Get(ctx, "b")
		if got.Score != 0 {
			t.Fatalf("session b score = %d, want 0", got.Score)
		}

		// Mutating a fetched copy must not leak into the store.
		got.Score = 500
		fresh, _ := s.Get(ctx, "b")
		if fresh.Score != 0 {
			t.Fatalf("store shared state with caller")
		}
	})
}

func TestStoreDelete(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_ = s.Save(ctx, New("x"))
		if err := s.Delete(ctx, "x"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "x"); err != nil {
			t.Fatalf("Delete missing: %v", err)
		}
	})
}

func TestStorePrune(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		old := New("old")
		old.UpdatedAt = time.Now().Add(-48 * time.Hour)
		_ = s.Save(ctx, old)
		_ = s.Save(ctx, New("new"))

		n, err := s.Prune(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("Prune: %v", err)
		}
		if n != 1 {
			t.Fatalf("pruned %d, want 1", n)
		}
		if _, err := s.Get(ctx, "new"); err != nil {
			t.Fatalf("new session pruned: %v", err)
		}
	})
}

func TestStoreRejectsMissingID(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if err := s.Save(context.Background(), &State{}); err == nil {
			t.Fatal("Save without id succeeded")
		}
	})
}
