package desktop

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/robalobadob/spellquiz/internal/advance"
	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/round"
	"github.com/robalobadob/spellquiz/internal/session"
)

// seqSource returns the queued indices in order, then repeats the last one.
type seqSource struct {
	mu  sync.Mutex
	seq []int
}

func (s *seqSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.seq[0]
	if len(s.seq) > 1 {
		s.seq = s.seq[1:]
	}
	return v % n
}

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeClock records timers; fire runs the most recent live one.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) advance.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	var live *fakeTimer
	for i := len(c.timers) - 1; i >= 0; i-- {
		if !c.timers[i].stopped {
			live = c.timers[i]
			break
		}
	}
	c.mu.Unlock()
	if live == nil {
		t.Fatal("no pending timer")
	}
	live.stopped = true
	live.f()
}

type event struct {
	kind    string
	score   int
	awarded int
	res     round.Result
	path    string
}

type recordingView struct {
	mu     sync.Mutex
	events []event
}

func (v *recordingView) ShowRound(img image.Image, score int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, event{kind: "round", score: score})
}

func (v *recordingView) ShowImageError(p string, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, event{kind: "error", path: p})
}

func (v *recordingView) ShowResult(res round.Result, awarded, score int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, event{kind: "result", res: res, awarded: awarded, score: score})
}

func (v *recordingView) last(t *testing.T) event {
	t.Helper()
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.events) == 0 {
		t.Fatal("no events")
	}
	return v.events[len(v.events)-1]
}

func (v *recordingView) count(kind string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, e := range v.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// Catalog order is by name: 0 appel.png, 1 kaput.png, 2 peer.png.
func newController(t *testing.T, picks ...int) (*Controller, *recordingView, *fakeClock) {
	t.Helper()
	good := pngBytes(t)
	cat, err := catalog.BuildFS(fstest.MapFS{
		"appel.png": {Data: good},
		"kaput.png": {Data: []byte("not a png")},
		"peer.png":  {Data: good},
	}, ".")
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{}
	view := &recordingView{}
	c, err := NewController(cat, round.NewSelector(&seqSource{seq: picks}), advance.NewWithClock(clock.AfterFunc), 1500*time.Millisecond, view)
	if err != nil {
		t.Fatal(err)
	}
	return c, view, clock
}

func TestCorrectGuessScoresAndAdvances(t *testing.T) {
	c, view, clock := newController(t, 0, 2)
	c.Start()
	if e := view.last(t); e.kind != "round" || e.score != 0 {
		t.Fatalf("after start: %+v", e)
	}

	if !c.Submit("  APPEL ") {
		t.Fatal("submit rejected")
	}
	e := view.last(t)
	if e.kind != "result" || !e.res.Correct || e.awarded != round.Reward || e.score != 10 {
		t.Fatalf("result: %+v", e)
	}
	if clock.delays[len(clock.delays)-1] != 1500*time.Millisecond {
		t.Fatalf("delay = %v", clock.delays)
	}

	clock.fire(t)
	if e := view.last(t); e.kind != "round" || e.score != 10 {
		t.Fatalf("after advance: %+v", e)
	}
	if st := c.State(); st.Expected != "peer" || st.Phase != session.PhaseAwaitingGuess {
		t.Fatalf("state = %+v", st)
	}
}

func TestThreeCorrectThenReset(t *testing.T) {
	c, view, clock := newController(t, 0)
	c.Start()
	for i := 0; i < 3; i++ {
		c.Submit("appel")
		clock.fire(t)
	}
	if st := c.State(); st.Score != 30 {
		t.Fatalf("score = %d, want 30", st.Score)
	}
	c.Reset()
	if st := c.State(); st.Score != 0 || st.Phase != session.PhaseAwaitingGuess {
		t.Fatalf("after reset: %+v", st)
	}
	if e := view.last(t); e.kind != "round" || e.score != 0 {
		t.Fatalf("after reset: %+v", e)
	}
}

func TestSubmitWhileResolvedIsIgnored(t *testing.T) {
	c, view, _ := newController(t, 0)
	c.Start()
	c.Submit("peer")
	if c.Submit("appel") {
		t.Fatal("second submit accepted")
	}
	if n := view.count("result"); n != 1 {
		t.Fatalf("%d results shown", n)
	}
	if st := c.State(); st.Score != 0 {
		t.Fatalf("score = %d", st.Score)
	}
}

func TestNextCancelsPendingAdvance(t *testing.T) {
	c, view, clock := newController(t, 0)
	c.Start()
	c.Submit("appel")
	c.Next()

	rounds := view.count("round")
	if rounds != 2 {
		t.Fatalf("rounds shown = %d, want 2", rounds)
	}
	for _, tm := range clock.timers {
		if !tm.stopped {
			t.Fatal("pending advance survived Next")
		}
	}
}

func TestStaleTransitionDoesNotRun(t *testing.T) {
	c, view, clock := newController(t, 0)
	c.Start()
	c.Submit("appel")

	// Grab the scheduled callback, let Next win, then run the old callback
	// as if its timer had already fired.
	stale := clock.timers[len(clock.timers)-1].f
	c.Next()
	stale()

	if n := view.count("round"); n != 2 {
		t.Fatalf("rounds shown = %d, want 2", n)
	}
}

func TestImageLoadFailureMovesOn(t *testing.T) {
	c, view, clock := newController(t, 1, 1, 2)
	c.Start()

	e := view.last(t)
	if e.kind != "error" || e.path != "kaput.png" {
		t.Fatalf("after start: %+v", e)
	}
	if st := c.State(); st.Phase != session.PhaseIdle {
		t.Fatalf("phase = %s, want idle", st.Phase)
	}
	if c.Submit("kaput") {
		t.Fatal("submit accepted without a picture")
	}

	// The retry avoids the broken picture.
	clock.fire(t)
	if e := view.last(t); e.kind != "round" {
		t.Fatalf("after retry: %+v", e)
	}
	if st := c.State(); st.Expected != "peer" {
		t.Fatalf("expected = %q", st.Expected)
	}
}

func TestFailedPictureDropsPreviousRound(t *testing.T) {
	c, view, _ := newController(t, 0, 1)
	c.Start()
	if st := c.State(); st.Phase != session.PhaseAwaitingGuess || st.Expected != "appel" {
		t.Fatalf("after start: %+v", st)
	}

	c.Next() // lands on kaput.png
	if e := view.last(t); e.kind != "error" {
		t.Fatalf("after next: %+v", e)
	}
	if c.Submit("appel") {
		t.Fatal("guess for the replaced picture was accepted")
	}
	if st := c.State(); st.Score != 0 || st.Phase != session.PhaseIdle || st.Expected != "" {
		t.Fatalf("state = %+v", st)
	}
}

func TestRetryAfterFailureIsNotImmediate(t *testing.T) {
	c, view, clock := newController(t, 1)
	c.delay = 0
	c.Start()

	if view.count("error") != 1 {
		t.Fatalf("events = %+v", view.events)
	}
	if got := clock.delays[len(clock.delays)-1]; got != MinRetryDelay {
		t.Fatalf("retry delay = %v, want %v", got, MinRetryDelay)
	}
	// Every picture picked is broken: each retry waits again.
	clock.fire(t)
	if view.count("error") != 2 || len(clock.delays) != 2 || clock.delays[1] != MinRetryDelay {
		t.Fatalf("delays = %v, events = %+v", clock.delays, view.events)
	}
}

func TestSubmitDuringLoadWins(t *testing.T) {
	c, view, _ := newController(t, 0, 2)
	c.Start()

	// Next reads the round sequence, then a guess lands before the new
	// picture is ready: the stale load must not replace the result.
	c.mu.Lock()
	seq := c.seq
	c.mu.Unlock()
	if !c.Submit("appel") {
		t.Fatal("submit rejected")
	}
	c.advance(seq, "")

	if e := view.last(t); e.kind != "result" {
		t.Fatalf("last event = %+v, want result", e)
	}
	if st := c.State(); st.Phase != session.PhaseResolved || st.Score != 10 {
		t.Fatalf("state = %+v", st)
	}
}

func TestCloseDropsPendingAdvance(t *testing.T) {
	c, view, clock := newController(t, 0)
	c.Start()
	c.Submit("appel")
	c.Close()
	for _, tm := range clock.timers {
		if !tm.stopped {
			t.Fatal("pending advance survived Close")
		}
	}
	if n := view.count("round"); n != 1 {
		t.Fatalf("rounds shown = %d", n)
	}
}

func TestEmptyCatalog(t *testing.T) {
	_, err := NewController(&catalog.Catalog{}, nil, nil, 0, &recordingView{})
	if !errors.Is(err, catalog.ErrEmptyCatalog) {
		t.Fatalf("err = %v", err)
	}
}
