package desktop

import (
	"fmt"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/robalobadob/spellquiz/internal/catalog"
	"github.com/robalobadob/spellquiz/internal/round"
)

// App is the quiz window.
type App struct {
	app    fyne.App
	window fyne.Window
	ctrl   *Controller

	picture *canvas.Image
	guess   *widget.Entry
	check   *widget.Button
	next    *widget.Button
	reset   *widget.Button
	score   *widget.Label
	status  *widget.Label
}

// New builds the window for cat; delay is the pause before the next picture.
func New(cat *catalog.Catalog, delay time.Duration) (*App, error) {
	a := &App{app: app.NewWithID("com.github.robalobadob.spellquiz")}
	ctrl, err := NewController(cat, nil, nil, delay, a)
	if err != nil {
		return nil, err
	}
	a.ctrl = ctrl
	a.setupUI()
	return a, nil
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.app.Lifecycle().SetOnStarted(func() {
		go a.ctrl.Start()
	})
	a.window.ShowAndRun()
	a.ctrl.Close()
}

func (a *App) setupUI() {
	a.window = a.app.NewWindow("Spelling Quiz")
	a.window.Resize(fyne.NewSize(480, 560))

	a.picture = canvas.NewImageFromResource(nil)
	a.picture.FillMode = canvas.ImageFillContain
	a.picture.SetMinSize(fyne.NewSize(320, 320))

	a.guess = widget.NewEntry()
	a.guess.SetPlaceHolder("Type the word...")
	a.guess.OnSubmitted = func(string) { a.onCheck() }

	a.check = widget.NewButton("Check", a.onCheck)
	a.check.Importance = widget.HighImportance
	a.next = widget.NewButton("Next", func() { go a.ctrl.Next() })
	a.reset = widget.NewButton("Reset score", func() { go a.ctrl.Reset() })

	a.score = widget.NewLabel("Score: 0")
	a.score.Alignment = fyne.TextAlignCenter
	a.status = widget.NewLabel("")
	a.status.Alignment = fyne.TextAlignCenter
	a.status.Wrapping = fyne.TextWrapWord

	controls := container.NewVBox(
		a.guess,
		container.NewGridWithColumns(3, a.check, a.next, a.reset),
		a.score,
		a.status,
	)
	a.window.SetContent(container.NewBorder(nil, controls, nil, nil, a.picture))
	a.window.Canvas().Focus(a.guess)
}

func (a *App) onCheck() {
	text := a.guess.Text
	go a.ctrl.Submit(text)
}

// ShowRound implements View.
func (a *App) ShowRound(img image.Image, score int) {
	fyne.Do(func() {
		a.picture.Resource = nil
		a.picture.Image = img
		a.picture.Refresh()
		a.guess.SetText("")
		a.guess.Enable()
		a.check.Enable()
		a.score.SetText(fmt.Sprintf("Score: %d", score))
		a.status.SetText("What is this?")
		a.window.Canvas().Focus(a.guess)
	})
}

// ShowImageError implements View.
func (a *App) ShowImageError(imagePath string, err error) {
	fyne.Do(func() {
		a.picture.Image = nil
		a.picture.Refresh()
		a.guess.Disable()
		a.check.Disable()
		a.status.SetText(fmt.Sprintf("Could not show %s: %v. Picking another picture...", imagePath, err))
	})
}

// ShowResult implements View.
func (a *App) ShowResult(res round.Result, awarded, score int) {
	fyne.Do(func() {
		a.guess.Disable()
		a.check.Disable()
		a.score.SetText(fmt.Sprintf("Score: %d", score))
		if res.Correct {
			a.status.SetText(fmt.Sprintf("Correct! +%d", awarded))
			return
		}
		a.status.SetText(fmt.Sprintf("Wrong. The word was %q.", res.Expected))
	})
}
