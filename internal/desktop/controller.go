// internal/desktop/controller.go
//
// Round flow of the desktop quiz, independent of any widget toolkit.
//
//   Start/Next ─▶ picture shown ─Submit─▶ result shown ─(delay)─▶ next picture
//
//   - One session lives for the lifetime of the window.
//   - After a guess is judged the next round is scheduled on an
//     advance.Scheduler; Next skips the wait, Reset zeroes the score and
//     starts over. Both cancel the pending transition.
//   - Submitting while the result is on screen is ignored.
//   - A picture that cannot be opened or decoded is reported to the view and
//     another round is scheduled instead of stopping the game.

package desktop

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spellquiz/internal/advance"
	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/round"
	"github.com/robalobadob/spellquiz/internal/session"
)

// View receives what the controller wants shown. Methods may be called from
// timer goroutines; implementations hop onto their UI thread themselves.
type View interface {
	ShowRound(img image.Image, score int)
	ShowImageError(imagePath string, err error)
	ShowResult(res round.Result, awarded, score int)
}

// Controller drives a single-player session.
type Controller struct {
	catalog *catalog.Catalog
	sel     *round.Selector
	sched   *advance.Scheduler
	delay   time.Duration
	view    View
	log     zerolog.Logger

	mu      sync.Mutex
	st      *session.State
	seq     uint64 // bumped on every round change; stale transitions check it
	pending advance.Handle
}

// MinRetryDelay is the shortest pause before another picture is tried after
// one failed to load.
const MinRetryDelay = 500 * time.Millisecond

// NewController wires a controller. sched may be nil for a real-time
// scheduler.
func NewController(cat *catalog.Catalog, sel *round.Selector, sched *advance.Scheduler, delay time.Duration, view View) (*Controller, error) {
	if cat.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if sel == nil {
		sel = round.NewSelector(nil)
	}
	if sched == nil {
		sched = advance.New()
	}
	return &Controller{
		catalog: cat,
		sel:     sel,
		sched:   sched,
		delay:   delay,
		view:    view,
		log:     log.With().Str("component", "desktop").Logger(),
		st:      session.New("desktop"),
	}, nil
}

// Start shows the first picture.
func (c *Controller) Start() { c.Next() }

// Next drops any pending transition and shows a new picture now.
func (c *Controller) Next() {
	c.mu.Lock()
	c.pending.Cancel()
	seq := c.seq
	c.mu.Unlock()
	c.advance(seq, "")
}

// Submit judges guess against the current picture. It reports false when no
// guess is awaited.
func (c *Controller) Submit(guess string) bool {
	c.mu.Lock()
	res, awarded, err := c.st.Resolve(guess)
	if err != nil {
		c.mu.Unlock()
		return false
	}
	score := c.st.Score
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	c.log.Debug().Bool("correct", res.Correct).Str("word", res.Expected).Int("score", score).Msg("guess judged")
	c.view.ShowResult(res, awarded, score)
	c.schedule(c.delay, seq, "")
	return true
}

// Reset zeroes the score and starts a new round.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.pending.Cancel()
	c.st.Reset()
	c.seq++
	c.mu.Unlock()
	c.Next()
}

// Close cancels any pending transition.
func (c *Controller) Close() {
	if c.sched.Pending() {
		c.log.Debug().Msg("dropping pending round change")
	}
	c.sched.Cancel()
}

// State returns a copy of the session.
func (c *Controller) State() *session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.st.Clone()
}

// schedule arranges advance(seq, avoid) after d.
func (c *Controller) schedule(d time.Duration, seq uint64, avoid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != seq {
		return
	}
	c.pending = c.sched.Schedule(d, func() { c.advance(seq, avoid) })
}

// advance starts a new round unless something else already changed the round
// since seq was taken. avoid is an image path to skip if possible.
// The picture is loaded without holding c.mu.
func (c *Controller) advance(seq uint64, avoid string) {
	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		return
	}
	e, err := c.pick(avoid)
	c.mu.Unlock()
	if err != nil {
		c.log.Error().Err(err).Msg("pick round")
		return
	}

	img, loadErr := c.load(e.ImagePath)

	c.mu.Lock()
	if c.seq != seq {
		c.mu.Unlock()
		return
	}
	c.seq++
	seq = c.seq
	if loadErr != nil {
		// The previous picture is gone from the screen, so is its round.
		c.st.Abandon()
		c.mu.Unlock()

		c.log.Warn().Err(loadErr).Str("image", e.ImagePath).Msg("image load failed")
		c.view.ShowImageError(e.ImagePath, loadErr)
		c.schedule(max(c.delay, MinRetryDelay), seq, e.ImagePath)
		return
	}
	c.st.Begin(e)
	score := c.st.Score
	c.mu.Unlock()

	c.view.ShowRound(img, score)
}

// pick selects an entry, retrying a few times to avoid the given path when
// the catalog has alternatives.
func (c *Controller) pick(avoid string) (catalog.WordEntry, error) {
	e, err := c.sel.Pick(c.catalog)
	for i := 0; err == nil && avoid != "" && e.ImagePath == avoid && c.catalog.Len() > 1 && i < 8; i++ {
		e, err = c.sel.Pick(c.catalog)
	}
	return e, err
}

func (c *Controller) load(imagePath string) (image.Image, error) {
	f, err := c.catalog.Source().Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", imagePath, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", imagePath, err)
	}
	return img, nil
}
